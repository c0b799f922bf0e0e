// Package scheduler provides a unified interface for HPC job schedulers.
package scheduler

import (
	"os"
	"path/filepath"
	"time"
)

// SchedulerInfo holds information about the detected scheduler
type SchedulerInfo struct {
	Type      string // Scheduler type (e.g., "SLURM", "PBS")
	Binary    string // Path to scheduler binary (e.g., "/usr/bin/sbatch")
	Version   string // Scheduler version (if available)
	InJob     bool   // Whether we're currently inside a scheduled job
	Available bool   // Whether scheduler is available for job submission
}

// JobSpec represents specifications for submitting a batch job.
// Resource fields are declarative requests consumed by the scheduler.
type JobSpec struct {
	Name      string
	Partition string        // Partition/queue name
	Qos       string        // Quality of service
	Ntasks    int           // Task count (0 = omit directive)
	Ncpus     int           // CPUs per task
	MemMB     int64         // Memory per node in MB
	Time      time.Duration // Walltime limit
	Ngpus     int           // GPU count (0 = no GPU)
	GpuType   string        // GPU type/model (empty = generic)
	MailAll   bool          // Email on begin/end/fail
	MailUser  string        // Notification address (empty = submitting user)
	Stdout    string        // Stdout path, %j substituted with the job ID
	Stderr    string        // Stderr path, %j substituted with the job ID
	Body      string        // Shell body executed inside the allocation
	Metadata  map[string]string
}

// Scheduler defines the interface for job schedulers
type Scheduler interface {
	// IsAvailable checks if the scheduler is available and we're not already in a job
	IsAvailable() bool

	// CreateScript generates a batch script for the given spec.
	// Returns the path to the created script.
	CreateScript(spec *JobSpec, outputDir string) (string, error)

	// Submit submits a job script.
	// Returns the job ID assigned by the scheduler.
	Submit(scriptPath string) (string, error)

	// GetInfo returns information about the scheduler
	GetInfo() *SchedulerInfo
}

// DetectScheduler attempts to detect and return an available scheduler.
// Returns ErrSchedulerNotAvailable or ErrSchedulerNotFound otherwise.
func DetectScheduler() (Scheduler, error) {
	sched, err := DetectSchedulerWithBinary("")
	if err != nil {
		return nil, err
	}
	if !sched.IsAvailable() {
		return nil, ErrSchedulerNotAvailable
	}
	return sched, nil
}

// DetectSchedulerWithBinary attempts to initialize a scheduler using a preferred
// binary path. If preferredBin is empty, detection falls back to PATH discovery.
// Returns a Scheduler instance if the binary is present, regardless of
// availability; use DetectScheduler to require availability.
func DetectSchedulerWithBinary(preferredBin string) (Scheduler, error) {
	if preferredBin != "" {
		baseName := filepath.Base(preferredBin)
		switch baseName {
		case "qsub", "qdel", "qstat":
			return NewPbsSchedulerWithBinary(preferredBin)
		default:
			// Default to SLURM for sbatch and any other binary
			return NewSlurmSchedulerWithBinary(preferredBin)
		}
	}

	// Try SLURM via PATH (most common)
	slurm, err := NewSlurmScheduler()
	if err == nil {
		return slurm, nil
	}

	// Try PBS via PATH
	pbs, pbsErr := NewPbsScheduler()
	if pbsErr == nil {
		return pbs, nil
	}

	return nil, ErrSchedulerNotFound
}

// IsInsideJob checks if we're currently running inside a scheduler job.
// This is useful to avoid nested job submission.
func IsInsideJob() bool {
	if _, ok := os.LookupEnv("SLURM_JOB_ID"); ok {
		return true
	}
	if _, ok := os.LookupEnv("PBS_JOBID"); ok {
		return true
	}
	return false
}
