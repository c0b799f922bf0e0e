package env

import (
	"errors"
	"fmt"
)

var (
	// ErrCondaNotFound indicates no conda-compatible binary was found
	ErrCondaNotFound = errors.New("no conda-compatible binary found (tried micromamba, mamba, conda)")

	// ErrManifestMissing indicates the dependency manifest does not exist
	ErrManifestMissing = errors.New("dependency manifest not found")
)

// ManifestError wraps a manifest read failure with its path.
type ManifestError struct {
	Path string
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}
