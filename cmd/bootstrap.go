package cmd

import (
	"errors"
	"os"

	"github.com/hcopt/jobsub/internal/config"
	"github.com/hcopt/jobsub/internal/env"
	"github.com/hcopt/jobsub/internal/job"
	"github.com/hcopt/jobsub/internal/utils"
	"github.com/spf13/cobra"
)

var (
	bootstrapEnvName   string
	bootstrapPython    string
	bootstrapManifest  string
	bootstrapKeepGoing bool
	bootstrapDryRun    bool
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Submit a job that rebuilds the environment and runs the program",
	Long: `Submit a batch job that recreates the managed environment from scratch:
remove any existing environment of that name (absence is not an error),
create a fresh one with the pinned Python version, activate it, and
install dependencies from the manifest.

A missing manifest is a hard stop: the job exits non-zero with a
diagnostic before the program is ever invoked. After a successful
install the program runs with no arguments and its exit code becomes
the job's exit code.`,
	Example: `  jobsub bootstrap                       # Rebuild env and run the program
  jobsub bootstrap --python 3.11         # Pin a different Python
  jobsub bootstrap --keep-going          # Run even if the install fails
  jobsub --local bootstrap               # Rebuild directly on this host`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runBootstrap,
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	bootstrapCmd.Flags().StringVar(&bootstrapEnvName, "env-name", "", "Override the environment name")
	bootstrapCmd.Flags().StringVar(&bootstrapPython, "python", "", "Override the pinned Python version")
	bootstrapCmd.Flags().StringVar(&bootstrapManifest, "manifest", "", "Override the dependency manifest path")
	bootstrapCmd.Flags().BoolVar(&bootstrapKeepGoing, "keep-going", false, "Proceed to the program even if dependency installation fails")
	bootstrapCmd.Flags().BoolVar(&bootstrapDryRun, "dry-run", false, "Write the batch script but do not submit it")
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	cfg := &config.Global
	if bootstrapEnvName != "" {
		cfg.Env.Name = bootstrapEnvName
	}
	if bootstrapPython != "" {
		cfg.Env.Python = bootstrapPython
	}
	if bootstrapManifest != "" {
		cfg.Env.Manifest = bootstrapManifest
	}
	if bootstrapKeepGoing {
		cfg.Env.FailOnInstall = false
	}

	// Submit-time manifest inspection is advisory only: the authoritative
	// check runs inside the job, where the working copy actually is.
	manifest, err := env.LoadManifest(cfg.Env.Manifest)
	switch {
	case err == nil:
		utils.PrintMessage("Manifest %s: %d package(s)",
			utils.StylePath(manifest.Path), len(manifest.Packages))
	case errors.Is(err, env.ErrManifestMissing):
		utils.PrintWarning("Manifest %s not found on this host; the job will abort if it is still missing at run time", cfg.Env.Manifest)
	default:
		utils.PrintWarning("Could not read manifest: %v", err)
	}

	manager := newEnvManager(cfg)
	body := job.ComposeBootstrapBody(manager, cfg)

	if !cfg.SubmitJob {
		rc, err := job.RunLocal(body)
		if err != nil {
			return err
		}
		if rc != 0 {
			os.Exit(rc)
		}
		return nil
	}

	spec := job.NewSpec(cfg.Bootstrap, body, map[string]string{
		"Program":     cfg.Program.Command,
		"Environment": cfg.Env.Name,
		"Python":      cfg.Env.Python,
		"Manifest":    cfg.Env.Manifest,
	})

	return createAndSubmit(spec, bootstrapDryRun)
}
