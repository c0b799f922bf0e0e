package cmd

import (
	"fmt"
	"os"

	"github.com/hcopt/jobsub/internal/config"
	"github.com/hcopt/jobsub/internal/scheduler"
	"github.com/hcopt/jobsub/internal/utils"
	"github.com/spf13/cobra"
)

var (
	debugMode bool
	localMode bool
	quietMode bool
)

var rootCmd = &cobra.Command{
	Use:           "jobsub",
	Short:         "Submit solver jobs to an HPC cluster with a managed conda environment.",
	Version:       config.VERSION,
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Step 1: Load built-in defaults
		config.LoadDefaults()

		// Step 2: Initialize Viper (read config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintDebug("Error reading config file: %v", err)
		}

		// Step 3: Auto-detect binaries if needed and save to config
		updated, err := config.AutoDetectAndSave()
		if err != nil {
			utils.PrintDebug("Failed to save config: %v", err)
		} else if updated {
			if configPath, err := config.GetUserConfigPath(); err == nil {
				utils.PrintDebug("Auto-detected binaries saved to: %s", configPath)
			}
		}

		// Step 4: Load detected values from Viper into Global config
		config.LoadFromViper()

		// Step 5: Apply command-line flags (highest priority)
		if quietMode {
			utils.QuietMode = true
		}
		if debugMode {
			utils.DebugMode = true
			config.Global.Debug = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("jobsub Version: %s", utils.StyleInfo(config.VERSION))
			utils.PrintDebug("Environment: %s (python %s)", config.Global.Env.Name, config.Global.Env.Python)
			utils.PrintDebug("Program: %s", config.Global.Program.Command)
			if config.Global.SchedulerBin != "" {
				utils.PrintDebug("Scheduler Binary: %s", config.Global.SchedulerBin)
			}
			if config.Global.Env.CondaBin != "" {
				utils.PrintDebug("Conda Binary: %s", config.Global.Env.CondaBin)
			}
		}

		if localMode {
			config.Global.SubmitJob = false
			utils.PrintDebug("Local mode enabled (job submission disabled)")
		}

		// Step 6: Initialize scheduler if job submission is enabled
		if config.Global.SubmitJob {
			var sched scheduler.Scheduler
			var err error
			if bin := config.Global.SchedulerBin; bin != "" {
				sched, err = scheduler.DetectSchedulerWithBinary(bin)
				if err == nil && !sched.IsAvailable() {
					sched, err = nil, scheduler.ErrSchedulerNotAvailable
				}
			} else {
				sched, err = scheduler.DetectScheduler()
			}
			if err == nil {
				scheduler.SetActiveScheduler(sched)
				utils.PrintDebug("Scheduler initialized and available")
			} else {
				utils.PrintDebug("Scheduler not available: %v", err)
			}
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVar(&localMode, "local", false, "Disable job submission (run the job body locally)")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress informational output")
}
