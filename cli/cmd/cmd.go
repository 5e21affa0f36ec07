package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"

	"github.com/ardnew/vexpr/lang"
	"github.com/ardnew/vexpr/lang/stdlib"
	"github.com/ardnew/vexpr/log"
)

// Standard streams used by commands, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	functionFilesKey struct{}
	functionsKey     struct{}
)

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// fileSourcePrefix marks a source argument naming a file.
const fileSourcePrefix = "@"

// WithFunctionFiles returns a new context.Context containing the paths of
// the given function definition files.
//
// Paths are resolved through symlinks and deduplicated by device/inode, so
// a file named twice is loaded once. Paths that cannot be resolved are kept
// as given and fail when loaded.
func WithFunctionFiles(ctx context.Context, paths []string) context.Context {
	return context.WithValue(ctx, functionFilesKey{}, uniqueFiles(paths))
}

// WithFunctions returns a new context.Context containing function
// definitions read from the configuration file.
func WithFunctions(
	ctx context.Context,
	defs map[string]stdlib.ExprDef,
) context.Context {
	return context.WithValue(ctx, functionsKey{}, defs)
}

func functionFilesFrom(ctx context.Context) []string {
	paths, _ := ctx.Value(functionFilesKey{}).([]string)

	return paths
}

func functionsFrom(ctx context.Context) map[string]stdlib.ExprDef {
	defs, _ := ctx.Value(functionsKey{}).(map[string]stdlib.ExprDef)

	return defs
}

// uniqueFiles returns paths with duplicates removed, in first-seen order.
func uniqueFiles(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}

	unique := make([]string, 0, len(paths))
	seen := make(map[fileKey]struct{})

	for _, path := range paths {
		resolved, key, ok := resolveFile(path)
		if !ok {
			unique = append(unique, path)

			continue
		}

		if _, exists := seen[key]; exists {
			continue
		}

		seen[key] = struct{}{}
		unique = append(unique, resolved)
	}

	return unique
}

// resolveFile resolves path to an absolute path with symlinks evaluated and
// returns the device/inode key of its target.
func resolveFile(path string) (resolved string, key fileKey, ok bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", key, false
	}

	resolved, err = filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", key, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", key, false
	}

	key, ok = makeFileKey(info)

	return resolved, key, ok
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: stat.Dev, ino: stat.Ino}, true
}

// newRegistry returns the function registry for a command: the built-in
// functions, then the configured functions, then each function file.
func newRegistry(ctx context.Context) (*stdlib.Registry, error) {
	reg := stdlib.New(stdlib.WithLogger(log.Default()))

	if defs := functionsFrom(ctx); len(defs) > 0 {
		names, err := reg.Define(defs)
		if err != nil {
			return nil, ErrFunctionFile.
				With(slog.String("file", "configuration")).
				Wrap(err)
		}

		log.TraceContext(ctx, "defined configured functions",
			slog.Any("names", names))
	}

	for _, path := range functionFilesFrom(ctx) {
		if err := loadFunctionFile(ctx, reg, path); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func loadFunctionFile(ctx context.Context, reg *stdlib.Registry, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return ErrFunctionFile.With(slog.String("file", path)).Wrap(err)
	}
	defer file.Close()

	names, err := reg.LoadYAML(ctx, file)
	if err != nil {
		return ErrFunctionFile.With(slog.String("file", path)).Wrap(err)
	}

	log.TraceContext(ctx, "loaded function file",
		slog.String("file", path),
		slog.Any("names", names))

	return nil
}

// readSource returns the source text named by arg and a name for error
// positions. "-" reads stdin, "@FILE" reads FILE, and anything else is the
// source text itself.
func readSource(arg string) (name, source string, err error) {
	var r io.Reader

	switch {
	case arg == stdinSource:
		name, r = "<stdin>", stdin

	case strings.HasPrefix(arg, fileSourcePrefix):
		name = strings.TrimPrefix(arg, fileSourcePrefix)

		file, err := os.Open(name)
		if err != nil {
			return name, "", ErrReadSource.With(slog.String("file", name)).Wrap(err)
		}
		defer file.Close()

		r = file

	default:
		return "<arg>", arg, nil
	}

	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return name, "", ErrReadSource.With(slog.String("source", name)).Wrap(err)
	}

	return name, string(data), nil
}

// expressionError wraps a compile or evaluation error of the named source.
func expressionError(err error, name, source string) error {
	e := ErrExpression.
		With(slog.String("source", name)).
		With(slog.String("class", lang.ClassOf(err).String()))

	if snippet := lang.Snippet(err, source); snippet != "" {
		e = e.With(slog.String("snippet", snippet))
	}

	return e.Wrap(err)
}
