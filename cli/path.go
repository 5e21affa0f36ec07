package cli

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/vexpr/pkg"
)

// baseConfig is the name of the configuration file.
const baseConfig = "config.yaml"

// defaultDirMode is the permission mode of created directories.
var defaultDirMode os.FileMode = 0o700

// Name rewrites applied to the executable name by [basePrefix].
var prefixRewrites = []struct {
	rex *regexp.Regexp
	rep string
}{
	{regexp.MustCompile(`^__debug_bin\d+$`), pkg.Name}, // dlv output
	{regexp.MustCompile(`^\.+`), ""},
}

// basePrefix returns the name of the executable without its extension. It
// names the configuration and cache directories and prefixes the environment
// variables that override them.
var basePrefix = sync.OnceValue(func() string {
	id := os.Args[0]
	if exe, err := os.Executable(); err == nil {
		id = exe
	}

	id = filepath.Base(id)
	id = strings.TrimSuffix(id, filepath.Ext(id))

	for _, r := range prefixRewrites {
		id = r.rex.ReplaceAllString(id, r.rep)
	}

	if id == "" {
		return pkg.Name
	}

	return id
})

// envName returns the environment variable named by suffix and the base
// prefix, e.g. VEXPR_CONFIG_DIR.
func envName(suffix string) string {
	prefix := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}

		return '_'
	}, basePrefix())

	return prefix + "_" + suffix
}

// userDir returns the directory named by the environment variable env, or
// the base prefix under the directory returned by user, or under fallback in
// the home directory, or under the working directory.
func userDir(env string, user func() (string, error), fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}

	dir, err := user()
	if err != nil {
		dir, err = os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(dir, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, basePrefix())
}

// configDir returns the directory of the configuration file.
var configDir = sync.OnceValue(func() string {
	return userDir(envName("CONFIG_DIR"), os.UserConfigDir, ".config")
})

// cacheDir returns the directory of REPL history and profiles.
var cacheDir = sync.OnceValue(func() string {
	return userDir(envName("CACHE_DIR"), os.UserCacheDir, ".cache")
})

// configPath joins elem to the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	return errors.Join(
		os.MkdirAll(configDir(), defaultDirMode),
		os.MkdirAll(cacheDir(), defaultDirMode),
	)
}
