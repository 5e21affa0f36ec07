//go:build pprof

package profile

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestOptions_StartCPU(t *testing.T) {
	if !slices.Contains(Modes(), "cpu") {
		t.Fatalf("Modes() = %v, want cpu", Modes())
	}

	dir := t.TempDir()

	stop := Options{Mode: "cpu", Dir: dir, Quiet: true}.Start()
	stop()

	if _, err := os.Stat(filepath.Join(dir, "cpu.pprof")); err != nil {
		t.Errorf("profile not written: %v", err)
	}
}
