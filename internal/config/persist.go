package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/hcopt/jobsub/internal/utils"
	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// InitViper initializes Viper with search paths and defaults.
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (JOBSUB_*)
// 3. User config file (~/.config/jobsub/config.yaml)
// 4. System config file (/etc/jobsub/config.yaml)
// 5. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(userConfigDir, "jobsub"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".jobsub"))
	}

	viper.AddConfigPath("/etc/jobsub")

	// Current directory (for per-project overrides)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("JOBSUB")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults and auto-detection apply
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("scheduler_bin", "")
	viper.SetDefault("scheduler_type", "")
	viper.SetDefault("submit_job", true)
	viper.SetDefault("scripts_dir", ".jobsub")

	viper.SetDefault("env.name", "solver-env")
	viper.SetDefault("env.python", "3.10")
	viper.SetDefault("env.manifest", "requirements.txt")
	viper.SetDefault("env.conda_bin", "")
	viper.SetDefault("env.fail_on_install", true)

	viper.SetDefault("program.command", "python main.py")

	viper.SetDefault("launch.job_name", "solver")
	viper.SetDefault("launch.partition", "mid")
	viper.SetDefault("launch.qos", "users")
	viper.SetDefault("launch.ntasks", 1)
	viper.SetDefault("launch.cpus", 32)
	viper.SetDefault("launch.mem", "128G")
	viper.SetDefault("launch.time", "1-00:00:00")
	viper.SetDefault("launch.mail_all", true)
	viper.SetDefault("launch.mail_user", "")
	viper.SetDefault("launch.stdout", "%j.out")
	viper.SetDefault("launch.stderr", "%j.err")

	viper.SetDefault("bootstrap.job_name", "solver-setup")
	viper.SetDefault("bootstrap.partition", "mid")
	viper.SetDefault("bootstrap.qos", "users")
	viper.SetDefault("bootstrap.cpus", 4)
	viper.SetDefault("bootstrap.mem", "128G")
	viper.SetDefault("bootstrap.time", "1-00:00:00")
	viper.SetDefault("bootstrap.gpus", 1)
	viper.SetDefault("bootstrap.gpu_type", "")
	viper.SetDefault("bootstrap.mail_all", true)
	viper.SetDefault("bootstrap.mail_user", "")
	viper.SetDefault("bootstrap.stdout", "%j.out")
	viper.SetDefault("bootstrap.stderr", "%j.err")
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".jobsub", ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, "jobsub", ConfigFilename+"."+ConfigType), nil
}

// SaveConfig saves current Viper config to the user config file
func SaveConfig() error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if !utils.DirExists(configDir) {
		if err := os.MkdirAll(configDir, utils.PermDir); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateBinary checks if a binary exists and is executable
func ValidateBinary(binPath string) bool {
	if binPath == "" {
		return false
	}

	if filepath.IsAbs(binPath) {
		info, err := os.Stat(binPath)
		if err != nil {
			return false
		}
		return info.Mode()&0111 != 0
	}

	_, err := exec.LookPath(binPath)
	return err == nil
}

// DetectCondaBin attempts to find a conda-compatible binary.
// Returns the full absolute path if found, empty string otherwise.
func DetectCondaBin() string {
	// Prefer faster solvers when present
	candidates := []string{"micromamba", "mamba", "conda"}
	for _, candidate := range candidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path
		}
	}

	return ""
}

// DetectSchedulerBin attempts to find a scheduler submission binary.
// Returns (binary_path, scheduler_type) if found.
func DetectSchedulerBin() (string, string) {
	// Try SLURM first (most common in HPC)
	if path, err := exec.LookPath("sbatch"); err == nil {
		return path, "SLURM"
	}

	// Try PBS/Torque
	if path, err := exec.LookPath("qsub"); err == nil {
		return path, "PBS"
	}

	return "", ""
}

// AutoDetectAndSave auto-detects binaries and saves to config if needed.
// Returns true if config was updated.
func AutoDetectAndSave() (bool, error) {
	updated := false

	condaBin := viper.GetString("env.conda_bin")
	if !ValidateBinary(condaBin) {
		if detected := DetectCondaBin(); detected != "" {
			viper.Set("env.conda_bin", detected)
			updated = true
		}
	}

	schedulerBin := viper.GetString("scheduler_bin")
	if !ValidateBinary(schedulerBin) {
		detectedBin, detectedType := DetectSchedulerBin()
		if detectedBin != "" {
			viper.Set("scheduler_bin", detectedBin)
			viper.Set("scheduler_type", detectedType)
			updated = true
		}
	}

	if updated {
		if err := SaveConfig(); err != nil {
			return false, err
		}
	}

	return updated, nil
}

// LoadFromViper loads config from Viper into the Global struct
func LoadFromViper() {
	if bin := viper.GetString("scheduler_bin"); bin != "" {
		Global.SchedulerBin = bin
	}
	if st := viper.GetString("scheduler_type"); st != "" {
		Global.SchedulerType = st
	}
	if !viper.GetBool("submit_job") {
		Global.SubmitJob = false
	}
	if dir := viper.GetString("scripts_dir"); dir != "" {
		Global.ScriptsDir = dir
	}

	if name := viper.GetString("env.name"); name != "" {
		Global.Env.Name = name
	}
	if py := viper.GetString("env.python"); py != "" {
		Global.Env.Python = py
	}
	if manifest := viper.GetString("env.manifest"); manifest != "" {
		Global.Env.Manifest = manifest
	}
	if bin := viper.GetString("env.conda_bin"); bin != "" {
		Global.Env.CondaBin = bin
	}
	Global.Env.FailOnInstall = viper.GetBool("env.fail_on_install")

	if cmd := viper.GetString("program.command"); cmd != "" {
		Global.Program.Command = cmd
	}

	loadProfile("launch", &Global.Launch)
	loadProfile("bootstrap", &Global.Bootstrap)
}

// loadProfile overlays viper values for one job profile onto defaults.
func loadProfile(key string, p *Profile) {
	if name := viper.GetString(key + ".job_name"); name != "" {
		p.JobName = name
	}
	if partition := viper.GetString(key + ".partition"); partition != "" {
		p.Partition = partition
	}
	if qos := viper.GetString(key + ".qos"); qos != "" {
		p.Qos = qos
	}
	if ntasks := viper.GetInt(key + ".ntasks"); ntasks > 0 {
		p.Ntasks = ntasks
	}
	if cpus := viper.GetInt(key + ".cpus"); cpus > 0 {
		p.Ncpus = cpus
	}
	if mem := viper.GetString(key + ".mem"); mem != "" {
		if memMB, err := utils.ParseSizeToMB(mem); err == nil {
			p.MemMB = memMB
		} else {
			utils.PrintWarning("Invalid %s.mem value %q: %v", key, mem, err)
		}
	}
	if timeStr := viper.GetString(key + ".time"); timeStr != "" {
		if dur, err := utils.ParseDuration(timeStr); err == nil {
			p.Time = dur
		} else {
			utils.PrintWarning("Invalid %s.time value %q: %v", key, timeStr, err)
		}
	}
	if gpus := viper.GetInt(key + ".gpus"); gpus > 0 {
		p.Ngpus = gpus
	}
	if gpuType := viper.GetString(key + ".gpu_type"); gpuType != "" {
		p.GpuType = gpuType
	}
	p.MailAll = viper.GetBool(key + ".mail_all")
	if mailUser := viper.GetString(key + ".mail_user"); mailUser != "" {
		p.MailUser = mailUser
	}
	if stdout := viper.GetString(key + ".stdout"); stdout != "" {
		p.Stdout = stdout
	}
	if stderr := viper.GetString(key + ".stderr"); stderr != "" {
		p.Stderr = stderr
	}
}
