package worker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCandidatesOrder(t *testing.T) {
	dir := t.TempDir()
	cands := Candidates(dir)
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cands))
	}
	if filepath.Dir(cands[0].Path) != dir {
		t.Errorf("bundled candidate %q not in exe dir", cands[0].Path)
	}
	if len(cands[0].Args) != 0 {
		t.Errorf("bundled candidate has args: %v", cands[0].Args)
	}
	if len(cands[1].Args) != 1 {
		t.Errorf("dev candidate should carry the script arg, got %v", cands[1].Args)
	}
}

func TestCandidatesEnvOverride(t *testing.T) {
	t.Setenv("WISP_DEV_PYTHON", "/opt/venv/bin/python")
	t.Setenv("WISP_DEV_SCRIPT", "/src/backend.py")
	cands := Candidates(t.TempDir())
	dev := cands[1]
	if dev.Path != "/opt/venv/bin/python" {
		t.Errorf("interpreter = %q", dev.Path)
	}
	if len(dev.Args) != 1 || dev.Args[0] != "/src/backend.py" {
		t.Errorf("args = %v", dev.Args)
	}
}

func TestResolvePrefersBundled(t *testing.T) {
	dir := t.TempDir()
	bundled := filepath.Join(dir, bundledName())
	if err := os.WriteFile(bundled, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	// Dev fallback exists too; the bundled binary must win.
	t.Setenv("WISP_DEV_PYTHON", bundled)

	launch, err := Resolve(dir)
	if err != nil {
		t.Fatal(err)
	}
	if launch.Path != bundled || len(launch.Args) != 0 {
		t.Errorf("got %+v, want bundled %q", launch, bundled)
	}
}

func TestResolveDevFallback(t *testing.T) {
	dir := t.TempDir()
	python := filepath.Join(dir, "python3")
	if err := os.WriteFile(python, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WISP_DEV_PYTHON", python)
	t.Setenv("WISP_DEV_SCRIPT", "/src/backend.py")

	launch, err := Resolve(dir)
	if err != nil {
		t.Fatal(err)
	}
	if launch.Path != python {
		t.Errorf("path = %q, want %q", launch.Path, python)
	}
}

func TestResolveNotFound(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WISP_DEV_PYTHON", filepath.Join(dir, "missing"))
	_, err := Resolve(dir)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
