// Package cmd implements the vexpr subcommands: eval, fmt, repl and init.
//
// Source arguments are expression text, "@FILE" to read a file, or "-" to
// read stdin. Functions written in expr-lang come from the "functions" key
// of the configuration file, from --funcs files, and from --func flags.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
