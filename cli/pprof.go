//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/vexpr/log"
	"github.com/ardnew/vexpr/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Profile to record (${enum})." placeholder:"MODE" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Directory profiles are written to."                 type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(cacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	var group kong.Group

	group.Key = "pprof"
	group.Title = "Profiling (pprof)"

	return group
}

// start starts the configured profiler and returns a function stopping it.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	log.DebugContext(ctx, "profiling",
		slog.String("mode", f.Mode),
		slog.String("dir", f.Dir))

	stop = profile.Options{Mode: f.Mode, Dir: f.Dir, Quiet: true}.Start()

	return func() {
		stop()
		log.DebugContext(ctx, "profile written",
			slog.String("mode", f.Mode),
			slog.String("dir", f.Dir))
	}
}
