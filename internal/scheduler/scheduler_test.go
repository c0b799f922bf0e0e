package scheduler

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeJobName(t *testing.T) {
	cases := map[string]string{
		"solver":      "solver",
		"":            "job",
		"path/like":   "path--like",
		"with space":  "with_space",
		"a/b c":       "a--b_c",
	}

	for input, want := range cases {
		if got := safeJobName(input); got != want {
			t.Errorf("safeJobName(%q) = %q; want %q", input, got, want)
		}
	}
}

func TestIsInsideJob(t *testing.T) {
	// Register restores, then clear both markers for the baseline
	t.Setenv("SLURM_JOB_ID", "")
	t.Setenv("PBS_JOBID", "")
	os.Unsetenv("SLURM_JOB_ID")
	os.Unsetenv("PBS_JOBID")

	if IsInsideJob() {
		t.Fatalf("IsInsideJob() = true with no scheduler environment")
	}

	os.Setenv("SLURM_JOB_ID", "12345")
	if !IsInsideJob() {
		t.Errorf("IsInsideJob() = false with SLURM_JOB_ID set")
	}
	os.Unsetenv("SLURM_JOB_ID")

	os.Setenv("PBS_JOBID", "12345.pbsserver")
	if !IsInsideJob() {
		t.Errorf("IsInsideJob() = false with PBS_JOBID set")
	}
	os.Unsetenv("PBS_JOBID")
}

func TestDetectSchedulerWithBinary(t *testing.T) {
	tmpDir := t.TempDir()

	writeFakeBin := func(name string) string {
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatalf("failed to create fake binary: %v", err)
		}
		return path
	}

	sched, err := DetectSchedulerWithBinary(writeFakeBin("sbatch"))
	if err != nil {
		t.Fatalf("detection with sbatch path failed: %v", err)
	}
	if _, ok := sched.(*SlurmScheduler); !ok {
		t.Errorf("sbatch path detected as %T; want *SlurmScheduler", sched)
	}

	sched, err = DetectSchedulerWithBinary(writeFakeBin("qsub"))
	if err != nil {
		t.Fatalf("detection with qsub path failed: %v", err)
	}
	if _, ok := sched.(*PbsScheduler); !ok {
		t.Errorf("qsub path detected as %T; want *PbsScheduler", sched)
	}
}

func TestDetectSchedulerWithBinaryMissing(t *testing.T) {
	if _, err := DetectSchedulerWithBinary(filepath.Join(t.TempDir(), "sbatch")); err == nil {
		t.Errorf("expected error for nonexistent binary, got nil")
	}
}
