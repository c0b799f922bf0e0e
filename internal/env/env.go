// Package env manages the named conda environment the jobs run in.
//
// Nothing here talks to conda directly at submit time: the package emits
// shell fragments that the generated batch script executes inside the
// allocation, where the environment actually lives.
package env

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/hcopt/jobsub/internal/utils"
)

// Tool identifies the conda-compatible binary in use.
type Tool string

const (
	ToolConda      Tool = "conda"
	ToolMamba      Tool = "mamba"
	ToolMicromamba Tool = "micromamba"
)

// Manager emits environment-management shell fragments for one tool.
type Manager struct {
	bin  string
	tool Tool
}

// NewManager creates a Manager for the given binary path. If bin is empty,
// the binary is discovered from PATH (micromamba, then mamba, then conda).
func NewManager(bin string) (*Manager, error) {
	if bin == "" {
		for _, candidate := range []string{"micromamba", "mamba", "conda"} {
			if path, err := exec.LookPath(candidate); err == nil {
				bin = path
				break
			}
		}
		if bin == "" {
			return nil, ErrCondaNotFound
		}
	}

	return &Manager{bin: bin, tool: toolFromBin(bin)}, nil
}

// toolFromBin infers the tool flavor from the binary name.
func toolFromBin(bin string) Tool {
	switch filepath.Base(bin) {
	case "micromamba":
		return ToolMicromamba
	case "mamba":
		return ToolMamba
	default:
		return ToolConda
	}
}

// Bin returns the resolved binary path.
func (m *Manager) Bin() string { return m.bin }

// Tool returns the tool flavor.
func (m *Manager) Tool() Tool { return m.tool }

// HookLines returns the shell-integration lines needed before `activate`
// works in a non-interactive batch shell.
func (m *Manager) HookLines() []string {
	switch m.tool {
	case ToolMicromamba:
		return []string{fmt.Sprintf(`eval "$(%s shell hook --shell bash)"`, m.bin)}
	default:
		// conda and mamba share the conda.sh hook
		return []string{fmt.Sprintf(`source "$(%s info --base)/etc/profile.d/conda.sh"`, m.bin)}
	}
}

// ActivateLines returns a guarded activation: if activation fails the
// script exits non-zero without reaching the program invocation.
func (m *Manager) ActivateLines(name string) []string {
	activate := fmt.Sprintf("%s activate %s", m.activateCmd(), utils.ShellQuote(name))
	return []string{
		fmt.Sprintf("if ! %s; then", activate),
		fmt.Sprintf("    echo %s >&2", utils.ShellQuote("Failed to activate environment "+name)),
		"    exit 1",
		"fi",
	}
}

// activateCmd returns the command used for activation. Mamba installs
// alongside conda and activates through it.
func (m *Manager) activateCmd() string {
	if m.tool == ToolMicromamba {
		return m.bin
	}
	return "conda"
}

// RemoveLine returns an idempotent environment removal: a nonexistent
// environment is treated as already removed.
func (m *Manager) RemoveLine(name string) string {
	return fmt.Sprintf("%s env remove --yes --name %s 2>/dev/null || true", m.bin, utils.ShellQuote(name))
}

// CreateLine returns the environment creation command with a pinned
// Python version.
func (m *Manager) CreateLine(name, python string) string {
	quoted := utils.ShellQuote(name)
	switch m.tool {
	case ToolMicromamba:
		return fmt.Sprintf("%s create --yes --name %s -c conda-forge python=%s", m.bin, quoted, python)
	default:
		return fmt.Sprintf("%s create --yes --name %s python=%s", m.bin, quoted, python)
	}
}

// InstallLines returns the manifest installation block. The existence
// check runs inside the job: a missing manifest is a hard stop with a
// diagnostic on stderr, before any program invocation. When failClosed
// is set, an installation error aborts the same way.
func (m *Manager) InstallLines(manifest string, failClosed bool) []string {
	quoted := utils.ShellQuote(manifest)
	lines := []string{
		fmt.Sprintf("if [ ! -f %s ]; then", quoted),
		fmt.Sprintf("    echo %s >&2", utils.ShellQuote("Dependency manifest "+manifest+" not found; aborting before install")),
		"    exit 1",
		"fi",
	}
	if failClosed {
		lines = append(lines,
			fmt.Sprintf("if ! python -m pip install -r %s; then", quoted),
			fmt.Sprintf("    echo %s >&2", utils.ShellQuote("Dependency installation from "+manifest+" failed")),
			"    exit 1",
			"fi",
		)
	} else {
		lines = append(lines,
			fmt.Sprintf(`python -m pip install -r %s || echo "Dependency installation failed; continuing" >&2`, quoted),
		)
	}
	return lines
}
