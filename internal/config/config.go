// Package config holds the process-wide configuration for jobsub.
package config

import (
	"time"
)

const VERSION = "0.3.1"

// EnvConfig holds settings for the managed conda environment.
type EnvConfig struct {
	Name          string // Environment name (configurable to avoid collisions between submissions)
	Python        string // Pinned Python version for bootstrap (e.g. "3.10")
	Manifest      string // Dependency manifest path, relative to the working directory
	CondaBin      string // conda/mamba/micromamba binary
	FailOnInstall bool   // Abort before invocation when manifest install fails
}

// ProgramConfig describes the external program the jobs exist to launch.
type ProgramConfig struct {
	Command string // Invocation line, e.g. "python main.py"
}

// Profile holds the declarative resource request for one job flavor.
// These are hints consumed by the scheduler, not enforced locally.
type Profile struct {
	JobName   string
	Partition string
	Qos       string
	Ntasks    int
	Ncpus     int
	MemMB     int64
	Time      time.Duration
	Ngpus     int
	GpuType   string
	MailAll   bool   // Email on begin/end/fail
	MailUser  string // Empty = submitting user
	Stdout    string // Job-id-templated stdout path (%j)
	Stderr    string // Job-id-templated stderr path (%j)
}

// Config holds global application settings
type Config struct {
	Debug     bool
	SubmitJob bool
	Version   string

	SchedulerBin  string
	SchedulerType string

	ScriptsDir string // Where generated batch scripts are written

	Env     EnvConfig
	Program ProgramConfig

	Launch    Profile // [LAUNCHER] resource profile
	Bootstrap Profile // [BOOTSTRAP] resource profile
}

// Global holds the singleton configuration instance
var Global Config

const day = 24 * time.Hour

// LoadDefaults populates Global with built-in defaults. Viper values and
// command-line flags are layered on top afterwards.
func LoadDefaults() {
	Global = Config{
		Debug:     false,
		SubmitJob: true,
		Version:   VERSION,

		ScriptsDir: ".jobsub",

		Env: EnvConfig{
			Name:          "solver-env",
			Python:        "3.10",
			Manifest:      "requirements.txt",
			CondaBin:      "conda",
			FailOnInstall: true,
		},
		Program: ProgramConfig{
			Command: "python main.py",
		},

		Launch: Profile{
			JobName:   "solver",
			Partition: "mid",
			Qos:       "users",
			Ntasks:    1,
			Ncpus:     32,
			MemMB:     128 * 1024,
			Time:      day,
			MailAll:   true,
			Stdout:    "%j.out",
			Stderr:    "%j.err",
		},
		Bootstrap: Profile{
			JobName:   "solver-setup",
			Partition: "mid",
			Qos:       "users",
			Ncpus:     4,
			MemMB:     128 * 1024,
			Time:      day,
			Ngpus:     1,
			MailAll:   true,
			Stdout:    "%j.out",
			Stderr:    "%j.err",
		},
	}
}
