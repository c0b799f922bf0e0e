package utils

import "os"

// Standard default permissions
// Dir: u=rwx, g=rwx, o=rx
const PermDir os.FileMode = 0775

// Exec: u=rwx, g=rx, o=rx (generated batch scripts)
const PermExec os.FileMode = 0755

// FileExists returns true if path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
