//go:build pprof

package profile

import (
	"maps"
	"slices"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

var modes = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// Modes returns the sorted names of the supported profiles.
func Modes() []string { return slices.Sorted(maps.Keys(modes)) }

func start(o Options) func() {
	mode, ok := modes[o.Mode]
	if !ok {
		return func() {}
	}

	opts := []func(*profile.Profile){mode}

	if o.Dir != "" {
		opts = append(opts, profile.ProfilePath(o.Dir))
	}

	if o.Quiet {
		opts = append(opts, profile.Quiet)
	}

	return profile.Start(opts...).Stop
}
