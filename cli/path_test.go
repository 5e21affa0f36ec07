package cli

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestUserDir(t *testing.T) {
	fail := func() (string, error) { return "", errors.New("unavailable") }
	fixed := func() (string, error) { return "/etc/xdg", nil }

	t.Setenv("VEXPR_TEST_DIR", "")

	if got, want := userDir("VEXPR_TEST_DIR", fixed, ".x"), filepath.Join("/etc/xdg", basePrefix()); got != want {
		t.Errorf("userDir = %q, want %q", got, want)
	}

	home := t.TempDir()
	t.Setenv("HOME", home)

	if got, want := userDir("VEXPR_TEST_DIR", fail, ".x"), filepath.Join(home, ".x", basePrefix()); got != want {
		t.Errorf("userDir fallback = %q, want %q", got, want)
	}

	t.Setenv("VEXPR_TEST_DIR", "/override")

	if got := userDir("VEXPR_TEST_DIR", fixed, ".x"); got != "/override" {
		t.Errorf("userDir override = %q, want /override", got)
	}
}

func TestEnvName(t *testing.T) {
	got := envName("CACHE_DIR")

	if !strings.HasSuffix(got, "_CACHE_DIR") || strings.ToUpper(got) != got {
		t.Errorf("envName = %q", got)
	}

	if strings.ContainsAny(got, ".-") {
		t.Errorf("envName %q contains punctuation", got)
	}
}
