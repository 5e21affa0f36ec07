// Package profile provides optional runtime profiling for the vexpr command.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag:
//
//	go build -tags pprof -o vexpr .
//
// Without the tag every [Options.Start] returns a no-op and [Modes] is empty.
//
// # Modes
//
//   - allocs, heap, mem: memory profiling
//   - block, mutex: contention profiling
//   - clock, cpu: wall-clock and CPU profiling
//   - goroutine, thread: goroutine and thread creation profiling
//   - trace: execution trace
//
// # Command-Line Usage
//
//	# Profile a long-running evaluation
//	vexpr --pprof-mode cpu eval 'float4 v = new float4(1); dot(v, v)'
//
//	# Heap profile written to a custom directory
//	vexpr --pprof-mode heap --pprof-dir ./profiles repl
//
// The default output directory is the pprof subdirectory of the user cache
// directory, e.g. $XDG_CACHE_HOME/vexpr/pprof. Analyze the results with:
//
//	go tool pprof -http=: ./profiles/cpu.pprof
//
// Builds with the tag also import [net/http/pprof], so an embedding program
// that serves HTTP exposes the usual /debug/pprof/ endpoints.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
