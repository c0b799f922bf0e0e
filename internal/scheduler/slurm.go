package scheduler

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hcopt/jobsub/internal/utils"
)

// SlurmScheduler implements the Scheduler interface for SLURM
type SlurmScheduler struct {
	sbatchBin string
	jobIDRe   *regexp.Regexp
}

// NewSlurmScheduler creates a new SLURM scheduler instance using sbatch from PATH
func NewSlurmScheduler() (*SlurmScheduler, error) {
	return newSlurmSchedulerWithBinary("")
}

// NewSlurmSchedulerWithBinary creates a SLURM scheduler using an explicit sbatch path
func NewSlurmSchedulerWithBinary(sbatchBin string) (*SlurmScheduler, error) {
	return newSlurmSchedulerWithBinary(sbatchBin)
}

func newSlurmSchedulerWithBinary(sbatchBin string) (*SlurmScheduler, error) {
	binPath := sbatchBin
	if binPath == "" {
		var err error
		binPath, err = exec.LookPath("sbatch")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
		}
	} else {
		if absPath, err := filepath.Abs(binPath); err == nil {
			binPath = absPath
		}
		info, err := os.Stat(binPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrSchedulerNotFound, binPath)
		}
	}

	return &SlurmScheduler{
		sbatchBin: binPath,
		jobIDRe:   regexp.MustCompile(`Submitted batch job (\d+)`),
	}, nil
}

// IsAvailable checks if SLURM is available and we're not inside a SLURM job
func (s *SlurmScheduler) IsAvailable() bool {
	if s.sbatchBin == "" {
		return false
	}

	// Check if we're already inside a SLURM job
	_, inJob := os.LookupEnv("SLURM_JOB_ID")
	return !inJob
}

// GetInfo returns information about the SLURM scheduler
func (s *SlurmScheduler) GetInfo() *SchedulerInfo {
	_, inJob := os.LookupEnv("SLURM_JOB_ID")

	info := &SchedulerInfo{
		Type:      "SLURM",
		Binary:    s.sbatchBin,
		InJob:     inJob,
		Available: s.IsAvailable(),
	}

	if s.sbatchBin != "" {
		if version, err := s.getSlurmVersion(); err == nil {
			info.Version = version
		}
	}

	return info
}

// getSlurmVersion attempts to get the SLURM version
func (s *SlurmScheduler) getSlurmVersion() (string, error) {
	cmd := exec.Command(s.sbatchBin, "--version")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	// Parse version from output like "slurm 23.02.6"
	versionStr := strings.TrimSpace(string(output))
	parts := strings.Fields(versionStr)
	if len(parts) >= 2 {
		return parts[1], nil
	}

	return versionStr, nil
}

// CreateScript generates a SLURM batch script for the spec.
func (s *SlurmScheduler) CreateScript(spec *JobSpec, outputDir string) (string, error) {
	if strings.TrimSpace(spec.Body) == "" {
		return "", NewScriptCreationError(spec.Name, outputDir, ErrEmptyJobBody)
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, utils.PermDir); err != nil {
			return "", NewScriptCreationError(spec.Name, outputDir, err)
		}
	}

	// Unique script name so concurrent submissions on a shared
	// filesystem never collide.
	scriptName := fmt.Sprintf("%s-%s.sbatch", safeJobName(spec.Name), uuid.NewString()[:8])
	scriptPath := filepath.Join(outputDir, scriptName)

	file, err := os.Create(scriptPath)
	if err != nil {
		return "", NewScriptCreationError(spec.Name, scriptPath, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	fmt.Fprintln(writer, "#!/bin/bash")
	s.writeDirectives(writer, spec)
	fmt.Fprintln(writer, "")
	writeBanner(writer, spec, "$SLURM_JOB_ID")
	fmt.Fprintln(writer, "")
	fmt.Fprintln(writer, strings.TrimRight(spec.Body, "\n"))
	fmt.Fprintln(writer, "")
	writeFooter(writer, "$SLURM_JOB_ID")

	if err := os.Chmod(scriptPath, utils.PermExec); err != nil {
		return "", NewScriptCreationError(spec.Name, scriptPath, err)
	}

	return scriptPath, nil
}

// writeDirectives emits the #SBATCH resource request block.
func (s *SlurmScheduler) writeDirectives(writer *bufio.Writer, spec *JobSpec) {
	if spec.Name != "" {
		fmt.Fprintf(writer, "#SBATCH --job-name=%s\n", spec.Name)
	}
	if spec.Partition != "" {
		fmt.Fprintf(writer, "#SBATCH --partition=%s\n", spec.Partition)
	}
	if spec.Qos != "" {
		fmt.Fprintf(writer, "#SBATCH --qos=%s\n", spec.Qos)
	}
	if spec.Ntasks > 0 {
		fmt.Fprintf(writer, "#SBATCH --ntasks=%d\n", spec.Ntasks)
	}
	if spec.Ncpus > 0 {
		fmt.Fprintf(writer, "#SBATCH --cpus-per-task=%d\n", spec.Ncpus)
	}
	if spec.MemMB > 0 {
		fmt.Fprintf(writer, "#SBATCH --mem=%dmb\n", spec.MemMB)
	}
	if spec.Time > 0 {
		fmt.Fprintf(writer, "#SBATCH --time=%s\n", FormatSlurmTime(spec.Time))
	}
	if spec.Ngpus > 0 {
		if spec.GpuType != "" && spec.GpuType != "gpu" {
			fmt.Fprintf(writer, "#SBATCH --gres=gpu:%s:%d\n", spec.GpuType, spec.Ngpus)
		} else {
			fmt.Fprintf(writer, "#SBATCH --gres=gpu:%d\n", spec.Ngpus)
		}
	}
	if spec.Stdout != "" {
		fmt.Fprintf(writer, "#SBATCH --output=%s\n", spec.Stdout)
	}
	if spec.Stderr != "" {
		fmt.Fprintf(writer, "#SBATCH --error=%s\n", spec.Stderr)
	}
	if spec.MailAll {
		fmt.Fprintln(writer, "#SBATCH --mail-type=ALL")
	}
	if spec.MailUser != "" {
		fmt.Fprintf(writer, "#SBATCH --mail-user=%s\n", spec.MailUser)
	}
}

// Submit submits a SLURM job script via sbatch
func (s *SlurmScheduler) Submit(scriptPath string) (string, error) {
	cmd := exec.Command(s.sbatchBin, scriptPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", NewSubmissionError("SLURM", filepath.Base(scriptPath), string(output), err)
	}

	// Parse job ID from output like "Submitted batch job 12345"
	matches := s.jobIDRe.FindStringSubmatch(string(output))
	if len(matches) < 2 {
		return "", fmt.Errorf("%w: %s", ErrJobIDParseFailed, string(output))
	}

	return matches[1], nil
}

// FormatSlurmTime formats a duration as a SLURM time spec (D-HH:MM:SS or HH:MM:SS).
func FormatSlurmTime(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	total := int64(d.Seconds())
	days := total / (24 * 3600)
	rem := total % (24 * 3600)
	hours := rem / 3600
	rem %= 3600
	minutes := rem / 60
	seconds := rem % 60
	if days > 0 {
		return fmt.Sprintf("%d-%02d:%02d:%02d", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
