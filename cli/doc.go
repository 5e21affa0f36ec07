// Package cli contains the command line interface for vexpr.
//
// # Usage
//
//	vexpr [flags] [eval] EXPR...   evaluate expressions (default command)
//	vexpr fmt [native|json|yaml|ast] [EXPR...]
//	vexpr repl
//	vexpr init [--force]
//
// An EXPR argument is expression text, "@FILE" to read a file, or "-" to
// read stdin. Expressions given to one eval share a root scope:
//
//	vexpr 'float3 v = new float3(1, 2, 2)' 'length(v)'
//	vexpr --let 'int n = 4' 'n * n'
//	vexpr -F 'area(w, h)=w * h' 'area(3, 4)'
//
// # Configuration
//
// Flags may be set in the YAML configuration file at
// $XDG_CONFIG_HOME/vexpr/config.yaml, keyed by flag name. The same file
// defines expr-lang functions under the "functions" key:
//
//	log-level: debug
//	functions:
//	  area:
//	    params: [w, h]
//	    body: w * h
//
// "vexpr init" writes the file from the current flag values.
//
// VEXPR_CONFIG_DIR and VEXPR_CACHE_DIR override the configuration directory
// and the cache directory, which holds REPL history and profiles.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o vexpr .
//
// Then --pprof-mode enables a profile (allocs, block, clock, cpu,
// goroutine, heap, mem, mutex, thread, trace) written to --pprof-dir.
package cli
