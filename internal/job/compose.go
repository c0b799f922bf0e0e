// Package job composes the batch-script bodies for the two job flavors:
// the launcher (activate + forward arguments) and the environment
// bootstrapper (recreate env, install manifest, run with no arguments).
package job

import (
	"strings"

	"github.com/hcopt/jobsub/internal/config"
	"github.com/hcopt/jobsub/internal/env"
	"github.com/hcopt/jobsub/internal/scheduler"
	"github.com/hcopt/jobsub/internal/utils"
)

// ComposeLaunchBody builds the launcher body: guarded activation of the
// pre-existing environment, then the program invocation with the
// caller-supplied arguments appended verbatim, in order.
func ComposeLaunchBody(manager *env.Manager, cfg *config.Config, args []string) string {
	var lines []string
	lines = append(lines, manager.HookLines()...)
	lines = append(lines, manager.ActivateLines(cfg.Env.Name)...)
	lines = append(lines, "")

	invocation := cfg.Program.Command
	if len(args) > 0 {
		invocation += " " + utils.ShellQuoteAll(args)
	}
	lines = append(lines, invocation)

	return strings.Join(lines, "\n")
}

// ComposeBootstrapBody builds the bootstrapper body, sequentially:
// idempotent removal, creation with pinned Python, guarded activation,
// manifest check + install, then a zero-argument program invocation.
func ComposeBootstrapBody(manager *env.Manager, cfg *config.Config) string {
	var lines []string
	lines = append(lines, manager.HookLines()...)
	lines = append(lines, "")
	lines = append(lines, "# Recreate the environment from scratch; a missing env is not an error")
	lines = append(lines, manager.RemoveLine(cfg.Env.Name))
	lines = append(lines, manager.CreateLine(cfg.Env.Name, cfg.Env.Python))
	lines = append(lines, manager.ActivateLines(cfg.Env.Name)...)
	lines = append(lines, "")
	lines = append(lines, manager.InstallLines(cfg.Env.Manifest, cfg.Env.FailOnInstall)...)
	lines = append(lines, "")
	lines = append(lines, cfg.Program.Command)

	return strings.Join(lines, "\n")
}

// NewSpec converts a resource profile plus a composed body into a
// scheduler job spec.
func NewSpec(profile config.Profile, body string, metadata map[string]string) *scheduler.JobSpec {
	return &scheduler.JobSpec{
		Name:      profile.JobName,
		Partition: profile.Partition,
		Qos:       profile.Qos,
		Ntasks:    profile.Ntasks,
		Ncpus:     profile.Ncpus,
		MemMB:     profile.MemMB,
		Time:      profile.Time,
		Ngpus:     profile.Ngpus,
		GpuType:   profile.GpuType,
		MailAll:   profile.MailAll,
		MailUser:  profile.MailUser,
		Stdout:    profile.Stdout,
		Stderr:    profile.Stderr,
		Body:      body,
		Metadata:  metadata,
	}
}
