package stdlib

// System functions expose the host platform, process environment and
// filesystem to expressions. None of them modify the system.

import (
	"bufio"
	"context"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/vexpr/lang"
)

// WithEnviron replaces the process environment seen by getenv with a list
// of "KEY=VALUE" entries.
func WithEnviron(env []string) Option {
	return func(r *Registry) {
		r.environ = buildProcessEnvMap(env)
	}
}

func (r *Registry) registerSys() {
	r.Register("getenv", r.sysGetenv)
	r.Register("hostname", constant("hostname", getHostname))
	r.Register("username", constant("username", getUsername))
	r.Register("shell", constant("shell", getShell))
	r.Register("platform", constant("platform", func() string {
		return getPlatform().String()
	}))
	r.Register("target", constant("target", func() string {
		return getTarget().String()
	}))
	r.Register("cwd", constant("cwd", getCwd))
	r.Register("exists", predicate("exists", fileExists))
	r.Register("isdir", predicate("isdir", fileIsDir))
	r.Register("isfile", predicate("isfile", fileIsRegular))
	r.Register("islink", predicate("islink", fileIsSymlink))
	r.Register("abspath", pathFunc("abspath", pathAbs))
	r.Register("joinpath", sysJoinPath)
	r.Register("relpath", sysRelPath)
	r.Register("prefix", sysPrefix("prefix", nil))
	r.Register("prefixdir", sysPrefix("prefixdir", fileIsDir))
}

// sysGetenv returns the value of an environment variable, or the optional
// second argument if it is unset.
func (r *Registry) sysGetenv(
	_ context.Context,
	args []lang.Value,
) (lang.Value, error) {
	if err := requireArgs("getenv", args, 1, 2); err != nil {
		return lang.Value{}, err
	}

	strs, err := stringArgs("getenv", args)
	if err != nil {
		return lang.Value{}, err
	}

	var (
		val string
		ok  bool
	)

	if r.environ != nil {
		val, ok = r.environ[strs[0]]
	} else {
		val, ok = os.LookupEnv(strs[0])
	}

	if !ok && len(strs) > 1 {
		val = strs[1]
	}

	return lang.String(val), nil
}

func constant(name string, fn func() string) lang.Func {
	return func(_ context.Context, args []lang.Value) (lang.Value, error) {
		if err := requireArgs(name, args, 0, 0); err != nil {
			return lang.Value{}, err
		}

		return lang.String(fn()), nil
	}
}

func predicate(name string, fn func(string) bool) lang.Func {
	return func(_ context.Context, args []lang.Value) (lang.Value, error) {
		if err := requireArgs(name, args, 1, 1); err != nil {
			return lang.Value{}, err
		}

		s, ok := args[0].Text()
		if !ok {
			return lang.Value{}, argError(name, args[0], "a path")
		}

		return lang.Bool(fn(s)), nil
	}
}

func pathFunc(name string, fn func(string) string) lang.Func {
	return func(_ context.Context, args []lang.Value) (lang.Value, error) {
		if err := requireArgs(name, args, 1, 1); err != nil {
			return lang.Value{}, err
		}

		s, ok := args[0].Text()
		if !ok {
			return lang.Value{}, argError(name, args[0], "a path")
		}

		return lang.String(fn(s)), nil
	}
}

func sysJoinPath(_ context.Context, args []lang.Value) (lang.Value, error) {
	strs, err := stringArgs("joinpath", args)
	if err != nil {
		return lang.Value{}, err
	}

	return lang.String(pathCat(strs...)), nil
}

func sysRelPath(_ context.Context, args []lang.Value) (lang.Value, error) {
	if err := requireArgs("relpath", args, 2, 2); err != nil {
		return lang.Value{}, err
	}

	strs, err := stringArgs("relpath", args)
	if err != nil {
		return lang.Value{}, err
	}

	return lang.String(pathRel(strs[0], strs[1])), nil
}

// sysPrefix returns a function that moves the given items to the front of
// a path list such as $PATH, removing duplicates. When keep is non-nil, only
// the items it accepts are kept.
func sysPrefix(name string, keep func(string) bool) lang.Func {
	return func(_ context.Context, args []lang.Value) (lang.Value, error) {
		if err := requireArgs(name, args, 1, -1); err != nil {
			return lang.Value{}, err
		}

		strs, err := stringArgs(name, args)
		if err != nil {
			return lang.Value{}, err
		}

		delim := string(os.PathListSeparator)

		if keep == nil {
			return lang.String(mung.Make(
				mung.WithSubjectItems(strs[0]),
				mung.WithDelim(delim),
				mung.WithPrefixItems(strs[1:]...),
			).String()), nil
		}

		return lang.String(mung.Make(
			mung.WithSubjectItems(strs[0]),
			mung.WithDelim(delim),
			mung.WithPrefixItems(strs[1:]...),
			mung.WithFilter(keep),
		).String()), nil
	}
}

func stringArgs(name string, args []lang.Value) ([]string, error) {
	strs := make([]string, len(args))

	for i, v := range args {
		s, ok := v.Text()
		if !ok {
			return nil, argError(name, v, "string arguments")
		}

		strs[i] = s
	}

	return strs, nil
}

// target contains string identifiers for an operating system and
// instruction set architecture.
type target struct {
	OS   string
	Arch string
}

func (t target) String() string { return t.OS + "/" + t.Arch }

// getTarget returns the host target using GNU GCC/LLVM naming conventions.
func getTarget() target {
	t := getPlatform()

	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm":
		arm, ok := os.LookupEnv("GOARM")
		if ok {
			arm, _, _ = strings.Cut(arm, ",")
			switch strings.TrimSpace(arm) {
			case "5", "6", "7":
				t.Arch = "armv" + arm
			}
		}
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	}

	return t
}

// getPlatform returns the host target using Go conventions.
func getPlatform() target {
	var (
		o, a string
		ok   bool
	)

	if o, ok = os.LookupEnv("GOHOSTOS"); !ok {
		if o, ok = os.LookupEnv("GOOS"); !ok {
			o = runtime.GOOS
		}
	}

	if a, ok = os.LookupEnv("GOHOSTARCH"); !ok {
		if a, ok = os.LookupEnv("GOARCH"); !ok {
			a = runtime.GOARCH
		}
	}

	return target{OS: o, Arch: a}
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}

	return hostname
}

func getUsername() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}

	return u.Username
}

func getShell() string {
	if shell, ok := os.LookupEnv("SHELL"); ok {
		return shell
	}

	name := getUsername()
	if name == "" {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}

	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		e := strings.Split(s.Text(), ":")
		if len(e) > 6 && e[0] == name {
			return e[6]
		}
	}

	return ""
}

func getCwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return cwd
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}

func fileIsRegular(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

func fileIsSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeSymlink != 0
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathCat(elem ...string) string {
	return filepath.Join(elem...)
}

func pathRel(from, to string) string {
	p, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return pathCat(from, to)
	}

	return p
}

// buildProcessEnvMap converts a "KEY=VALUE" string slice to a map.
func buildProcessEnvMap(envList []string) map[string]string {
	result := make(map[string]string, len(envList))

	for _, entry := range envList {
		if key, value, ok := strings.Cut(entry, "="); ok {
			result[key] = value
		}
	}

	return result
}
