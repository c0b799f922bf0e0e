package cmd

import (
	"fmt"

	"github.com/hcopt/jobsub/internal/config"
	"github.com/hcopt/jobsub/internal/scheduler"
	"github.com/hcopt/jobsub/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or modify persisted configuration",
	Example: `  jobsub config show                  # Show resolved configuration
  jobsub config init                  # Write the config file with current values
  jobsub config set env.name my-env   # Persist a setting`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Run:   runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the user config file with current and detected values",
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg := &config.Global

	fmt.Println(utils.StyleTitle("Configuration:"))
	if path, err := config.GetUserConfigPath(); err == nil {
		fmt.Printf("  Config file:  %s\n", utils.StylePath(path))
	}
	fmt.Printf("  Scripts dir:  %s\n", utils.StylePath(cfg.ScriptsDir))
	fmt.Printf("  Submit jobs:  %v\n", cfg.SubmitJob)
	if cfg.SchedulerBin != "" {
		fmt.Printf("  Scheduler:    %s (%s)\n", utils.StylePath(cfg.SchedulerBin), cfg.SchedulerType)
	} else {
		fmt.Printf("  Scheduler:    %s\n", utils.StyleWarning("not detected"))
	}

	fmt.Println()
	fmt.Println(utils.StyleTitle("Environment:"))
	fmt.Printf("  Name:         %s\n", utils.StyleName(cfg.Env.Name))
	fmt.Printf("  Python:       %s\n", utils.StyleNumber(cfg.Env.Python))
	fmt.Printf("  Manifest:     %s\n", utils.StylePath(cfg.Env.Manifest))
	if cfg.Env.CondaBin != "" {
		fmt.Printf("  Conda binary: %s\n", utils.StylePath(cfg.Env.CondaBin))
	} else {
		fmt.Printf("  Conda binary: %s\n", utils.StyleWarning("not detected"))
	}
	fmt.Printf("  Install policy: %s\n", installPolicy(cfg.Env.FailOnInstall))

	fmt.Println()
	fmt.Println(utils.StyleTitle("Program:"))
	fmt.Printf("  Command:      %s\n", utils.StyleCommand(cfg.Program.Command))

	fmt.Println()
	printProfile("Launch profile", &cfg.Launch)
	fmt.Println()
	printProfile("Bootstrap profile", &cfg.Bootstrap)
}

func installPolicy(failClosed bool) string {
	if failClosed {
		return "fail closed (abort before invocation)"
	}
	return "keep going (invoke even if install fails)"
}

func printProfile(title string, p *config.Profile) {
	fmt.Println(utils.StyleTitle(title + ":"))
	fmt.Printf("  Job name:     %s\n", utils.StyleName(p.JobName))
	fmt.Printf("  Partition:    %s\n", p.Partition)
	fmt.Printf("  QoS:          %s\n", p.Qos)
	if p.Ntasks > 0 {
		fmt.Printf("  Tasks:        %d\n", p.Ntasks)
	}
	fmt.Printf("  CPUs:         %d\n", p.Ncpus)
	fmt.Printf("  Memory:       %d MB\n", p.MemMB)
	fmt.Printf("  Time:         %s\n", scheduler.FormatSlurmTime(p.Time))
	if p.Ngpus > 0 {
		if p.GpuType != "" {
			fmt.Printf("  GPUs:         %s:%d\n", p.GpuType, p.Ngpus)
		} else {
			fmt.Printf("  GPUs:         %d\n", p.Ngpus)
		}
	}
	fmt.Printf("  Mail:         all events")
	if !p.MailAll {
		fmt.Printf(" (disabled)")
	}
	if p.MailUser != "" {
		fmt.Printf(" -> %s", p.MailUser)
	}
	fmt.Println()
	fmt.Printf("  Stdout:       %s\n", p.Stdout)
	fmt.Printf("  Stderr:       %s\n", p.Stderr)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := config.AutoDetectAndSave(); err != nil {
		return err
	}
	if err := config.SaveConfig(); err != nil {
		return err
	}
	path, err := config.GetUserConfigPath()
	if err != nil {
		return err
	}
	utils.PrintSuccess("Config written to %s", utils.StylePath(path))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	viper.Set(key, value)
	if err := config.SaveConfig(); err != nil {
		return err
	}
	utils.PrintSuccess("Set %s = %s", utils.StyleName(key), value)
	return nil
}
