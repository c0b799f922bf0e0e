package cmd

import (
	"fmt"
	"os"

	"github.com/hcopt/jobsub/internal/config"
	"github.com/hcopt/jobsub/internal/env"
	"github.com/hcopt/jobsub/internal/job"
	"github.com/hcopt/jobsub/internal/scheduler"
	"github.com/hcopt/jobsub/internal/utils"
	"github.com/spf13/cobra"
)

var (
	launchEnvName string
	launchJobName string
	launchDryRun  bool
)

var launchCmd = &cobra.Command{
	Use:   "launch [program_args...]",
	Short: "Submit the solver job, forwarding all arguments to the program",
	Long: `Submit a batch job that activates the managed environment and runs the
external program with the given arguments, exactly as received and in order.

The job's exit code is the program's exit code, unchanged. If activation
fails, the job exits non-zero without invoking the program.`,
	Example: `  jobsub launch                       # Run the program with no arguments
  jobsub launch 1 2 3                 # Forward instance IDs to the program
  jobsub launch -- -verbose 7         # Use -- to forward flag-like arguments
  jobsub --local launch 7             # Run directly on this host instead`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runLaunch,
}

func init() {
	rootCmd.AddCommand(launchCmd)
	launchCmd.Flags().StringVar(&launchEnvName, "env-name", "", "Override the environment name")
	launchCmd.Flags().StringVarP(&launchJobName, "name", "n", "", "Override the job name")
	launchCmd.Flags().BoolVar(&launchDryRun, "dry-run", false, "Write the batch script but do not submit it")
	// Everything after the first positional argument belongs to the program
	launchCmd.Flags().SetInterspersed(false)
}

func runLaunch(cmd *cobra.Command, args []string) error {
	cfg := &config.Global
	if launchEnvName != "" {
		cfg.Env.Name = launchEnvName
	}
	if launchJobName != "" {
		cfg.Launch.JobName = launchJobName
	}

	manager := newEnvManager(cfg)
	body := job.ComposeLaunchBody(manager, cfg, args)

	// Local mode runs the body directly and propagates the exit code
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

	spec := job.NewSpec(cfg.Launch, body, map[string]string{
		"Program":     cfg.Program.Command,
		"Environment": cfg.Env.Name,
	})

	return createAndSubmit(spec, launchDryRun)
}

// newEnvManager resolves the conda binary, falling back to a bare "conda"
// when the submit host has none (the job runs on a compute node).
func newEnvManager(cfg *config.Config) *env.Manager {
	manager, err := env.NewManager(cfg.Env.CondaBin)
	if err != nil {
		utils.PrintDebug("%v; assuming conda is available inside the job", err)
		manager, _ = env.NewManager("conda")
	}
	return manager
}

// createAndSubmit writes the batch script and submits it unless dry-run.
// On success the job ID is printed alone on stdout for shell capture.
func createAndSubmit(spec *scheduler.JobSpec, dryRun bool) error {
	sched := scheduler.ActiveScheduler()
	if sched == nil {
		if scheduler.IsInsideJob() {
			ExitWithError("cannot submit from inside a scheduler job; use --local to run directly")
		}
		ExitWithError("no scheduler available on this system; use --local to run directly")
	}

	scriptPath, err := sched.CreateScript(spec, config.Global.ScriptsDir)
	if err != nil {
		return err
	}

	if dryRun {
		utils.PrintMessage("Dry run: batch script written to %s", utils.StylePath(scriptPath))
		content, err := os.ReadFile(scriptPath)
		if err == nil {
			fmt.Print(string(content))
		}
		return nil
	}

	jobID, err := sched.Submit(scriptPath)
	if err != nil {
		if scheduler.IsSubmissionError(err) {
			utils.PrintHint("Inspect the generated script at %s and resubmit it manually", utils.StylePath(scriptPath))
		}
		return err
	}

	utils.PrintSuccess("Submitted job %s with ID %s", utils.StyleName(spec.Name), utils.StyleNumber(jobID))
	// Bare job ID on stdout for shell capture when output is piped
	if !utils.IsInteractiveShell() {
		fmt.Println(jobID)
	}
	return nil
}
