package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "requirements.txt")
	if err := os.WriteFile(path, []byte("numpy\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if !FileExists(path) {
		t.Errorf("FileExists(%q) = false for existing file", path)
	}
	if FileExists(filepath.Join(tmpDir, "missing.txt")) {
		t.Errorf("FileExists = true for missing file")
	}
	if FileExists(tmpDir) {
		t.Errorf("FileExists = true for a directory")
	}
}

func TestDirExists(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "file")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if !DirExists(tmpDir) {
		t.Errorf("DirExists(%q) = false for existing directory", tmpDir)
	}
	if DirExists(path) {
		t.Errorf("DirExists = true for a regular file")
	}
	if DirExists(filepath.Join(tmpDir, "missing")) {
		t.Errorf("DirExists = true for missing path")
	}
}
