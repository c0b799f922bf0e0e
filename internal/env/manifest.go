package env

import (
	"bufio"
	"os"
	"strings"

	"github.com/hcopt/jobsub/internal/utils"
)

// Manifest is a parsed dependency manifest (pip requirements format).
type Manifest struct {
	Path     string
	Packages []string // Requirement lines, comments and blanks stripped
}

// LoadManifest reads and parses the manifest at path.
// Returns ErrManifestMissing (wrapped) if the file does not exist.
func LoadManifest(path string) (*Manifest, error) {
	if !utils.FileExists(path) {
		return nil, &ManifestError{Path: path, Err: ErrManifestMissing}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}
	defer file.Close()

	manifest := &Manifest{Path: path}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		manifest.Packages = append(manifest.Packages, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}

	return manifest, nil
}
