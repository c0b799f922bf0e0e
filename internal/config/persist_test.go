package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	LoadDefaults()

	if Global.Env.Name != "solver-env" {
		t.Errorf("Env.Name = %q; want solver-env", Global.Env.Name)
	}
	if !Global.Env.FailOnInstall {
		t.Errorf("Env.FailOnInstall = false; want fail-closed default")
	}
	if Global.Program.Command != "python main.py" {
		t.Errorf("Program.Command = %q; want python main.py", Global.Program.Command)
	}

	launch := Global.Launch
	if launch.Partition != "mid" || launch.Qos != "users" {
		t.Errorf("launch profile partition/qos = %q/%q; want mid/users", launch.Partition, launch.Qos)
	}
	if launch.Ntasks != 1 || launch.Ncpus != 32 {
		t.Errorf("launch profile tasks/cpus = %d/%d; want 1/32", launch.Ntasks, launch.Ncpus)
	}
	if launch.MemMB != 128*1024 {
		t.Errorf("launch profile mem = %d MB; want 128G", launch.MemMB)
	}
	if launch.Time != 24*time.Hour {
		t.Errorf("launch profile time = %v; want 24h", launch.Time)
	}
	if !launch.MailAll {
		t.Errorf("launch profile MailAll = false; want true")
	}
	if launch.Stdout != "%j.out" || launch.Stderr != "%j.err" {
		t.Errorf("launch profile logs = %q/%q; want %%j templated", launch.Stdout, launch.Stderr)
	}

	bootstrap := Global.Bootstrap
	if bootstrap.Ncpus != 4 || bootstrap.Ngpus != 1 {
		t.Errorf("bootstrap profile cpus/gpus = %d/%d; want 4/1", bootstrap.Ncpus, bootstrap.Ngpus)
	}
	if bootstrap.MemMB != 128*1024 || bootstrap.Time != 24*time.Hour {
		t.Errorf("bootstrap profile mem/time = %d/%v; want 128G/24h", bootstrap.MemMB, bootstrap.Time)
	}
}

func TestLoadProfileOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	LoadDefaults()
	viper.Set("launch.job_name", "tuned")
	viper.Set("launch.cpus", 16)
	viper.Set("launch.mem", "64G")
	viper.Set("launch.time", "2-00:00:00")
	viper.Set("launch.mail_all", true)

	p := Global.Launch
	loadProfile("launch", &p)

	if p.JobName != "tuned" {
		t.Errorf("JobName = %q; want tuned", p.JobName)
	}
	if p.Ncpus != 16 {
		t.Errorf("Ncpus = %d; want 16", p.Ncpus)
	}
	if p.MemMB != 64*1024 {
		t.Errorf("MemMB = %d; want 65536", p.MemMB)
	}
	if p.Time != 48*time.Hour {
		t.Errorf("Time = %v; want 48h", p.Time)
	}
	// Unset keys keep their defaults
	if p.Partition != "mid" || p.Qos != "users" {
		t.Errorf("partition/qos = %q/%q; want defaults preserved", p.Partition, p.Qos)
	}
}

func TestLoadProfileInvalidValuesKeepDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	LoadDefaults()
	viper.Set("launch.mem", "lots")
	viper.Set("launch.time", "soon")
	viper.Set("launch.mail_all", true)

	p := Global.Launch
	loadProfile("launch", &p)

	if p.MemMB != 128*1024 {
		t.Errorf("MemMB = %d; want default preserved on parse error", p.MemMB)
	}
	if p.Time != 24*time.Hour {
		t.Errorf("Time = %v; want default preserved on parse error", p.Time)
	}
}

func TestValidateBinary(t *testing.T) {
	if ValidateBinary("") {
		t.Errorf("empty path accepted")
	}
	if ValidateBinary("/nonexistent/path/to/sbatch") {
		t.Errorf("nonexistent absolute path accepted")
	}
	// sh is present on any system these jobs target
	if !ValidateBinary("sh") {
		t.Errorf("sh not found in PATH")
	}
}
