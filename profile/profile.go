package profile

// Options select a profile and where it is written.
type Options struct {
	Mode  string // one of [Modes]; empty disables profiling
	Dir   string // output directory; empty uses the working directory
	Quiet bool   // suppress the profiler's own log lines
}

// Start starts the profiler selected by o and returns a function that stops
// it and writes the profile. Profiling is disabled when Mode is empty or
// unknown, or when built without the pprof tag; stop is then a no-op.
func (o Options) Start() (stop func()) {
	if o.Mode == "" {
		return func() {}
	}

	return start(o)
}
