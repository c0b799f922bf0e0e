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

// PbsScheduler implements the Scheduler interface for PBS/Torque.
// EXPERIMENTAL: PBS is not tested on real clusters and may have edge cases.
type PbsScheduler struct {
	qsubBin string
	jobIDRe *regexp.Regexp
}

// NewPbsScheduler creates a new PBS scheduler instance using qsub from PATH
func NewPbsScheduler() (*PbsScheduler, error) {
	return newPbsSchedulerWithBinary("")
}

// NewPbsSchedulerWithBinary creates a PBS scheduler using an explicit qsub path
func NewPbsSchedulerWithBinary(qsubBin string) (*PbsScheduler, error) {
	return newPbsSchedulerWithBinary(qsubBin)
}

func newPbsSchedulerWithBinary(qsubBin string) (*PbsScheduler, error) {
	binPath := qsubBin
	if binPath == "" {
		var err error
		binPath, err = exec.LookPath("qsub")
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

	return &PbsScheduler{
		qsubBin: binPath,
		jobIDRe: regexp.MustCompile(`^\d+(\.\S+)?$`),
	}, nil
}

// IsAvailable checks if PBS is available and we're not inside a PBS job
func (p *PbsScheduler) IsAvailable() bool {
	if p.qsubBin == "" {
		return false
	}

	_, inJob := os.LookupEnv("PBS_JOBID")
	return !inJob
}

// GetInfo returns information about the PBS scheduler
func (p *PbsScheduler) GetInfo() *SchedulerInfo {
	_, inJob := os.LookupEnv("PBS_JOBID")

	info := &SchedulerInfo{
		Type:      "PBS",
		Binary:    p.qsubBin,
		InJob:     inJob,
		Available: p.IsAvailable(),
	}

	if p.qsubBin != "" {
		if version, err := p.getPbsVersion(); err == nil {
			info.Version = version
		}
	}

	return info
}

// getPbsVersion attempts to get the PBS version
func (p *PbsScheduler) getPbsVersion() (string, error) {
	cmd := exec.Command(p.qsubBin, "--version")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(output)), nil
}

// CreateScript generates a PBS batch script for the spec.
func (p *PbsScheduler) CreateScript(spec *JobSpec, outputDir string) (string, error) {
	if strings.TrimSpace(spec.Body) == "" {
		return "", NewScriptCreationError(spec.Name, outputDir, ErrEmptyJobBody)
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, utils.PermDir); err != nil {
			return "", NewScriptCreationError(spec.Name, outputDir, err)
		}
	}

	scriptName := fmt.Sprintf("%s-%s.pbs", safeJobName(spec.Name), uuid.NewString()[:8])
	scriptPath := filepath.Join(outputDir, scriptName)

	file, err := os.Create(scriptPath)
	if err != nil {
		return "", NewScriptCreationError(spec.Name, scriptPath, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	fmt.Fprintln(writer, "#!/bin/bash")
	p.writeDirectives(writer, spec)
	fmt.Fprintln(writer, "")
	// PBS starts jobs in $HOME; match SLURM's submit-directory behavior
	fmt.Fprintln(writer, "cd \"$PBS_O_WORKDIR\"")
	fmt.Fprintln(writer, "")
	writeBanner(writer, spec, "$PBS_JOBID")
	fmt.Fprintln(writer, "")
	fmt.Fprintln(writer, strings.TrimRight(spec.Body, "\n"))
	fmt.Fprintln(writer, "")
	writeFooter(writer, "$PBS_JOBID")

	if err := os.Chmod(scriptPath, utils.PermExec); err != nil {
		return "", NewScriptCreationError(spec.Name, scriptPath, err)
	}

	return scriptPath, nil
}

// writeDirectives emits the #PBS resource request block.
func (p *PbsScheduler) writeDirectives(writer *bufio.Writer, spec *JobSpec) {
	if spec.Name != "" {
		fmt.Fprintf(writer, "#PBS -N %s\n", spec.Name)
	}
	if spec.Partition != "" {
		fmt.Fprintf(writer, "#PBS -q %s\n", spec.Partition)
	}

	// select statement: chunk count defaults to 1
	chunks := spec.Ntasks
	if chunks <= 0 {
		chunks = 1
	}
	sel := fmt.Sprintf("select=%d", chunks)
	if spec.Ncpus > 0 {
		sel += fmt.Sprintf(":ncpus=%d", spec.Ncpus)
	}
	if spec.MemMB > 0 {
		sel += fmt.Sprintf(":mem=%dmb", spec.MemMB)
	}
	if spec.Ngpus > 0 {
		sel += fmt.Sprintf(":ngpus=%d", spec.Ngpus)
	}
	fmt.Fprintf(writer, "#PBS -l %s\n", sel)

	if spec.Time > 0 {
		fmt.Fprintf(writer, "#PBS -l walltime=%s\n", formatPbsWalltime(spec.Time))
	}
	// PBS has no %j templating in -o/-e; substitute a timestamped path
	if spec.Stdout != "" {
		fmt.Fprintf(writer, "#PBS -o %s\n", pbsLogPath(spec.Stdout, spec.Name))
	}
	if spec.Stderr != "" {
		fmt.Fprintf(writer, "#PBS -e %s\n", pbsLogPath(spec.Stderr, spec.Name))
	}
	if spec.MailAll {
		fmt.Fprintln(writer, "#PBS -m abe")
	}
	if spec.MailUser != "" {
		fmt.Fprintf(writer, "#PBS -M %s\n", spec.MailUser)
	}
}

// pbsLogPath rewrites a %j-templated log path into a timestamped one,
// since PBS cannot expand the job ID in -o/-e directives.
func pbsLogPath(templated, name string) string {
	if !strings.Contains(templated, "%j") {
		return templated
	}
	stamp := time.Now().Format("20060102-150405")
	return strings.ReplaceAll(templated, "%j", fmt.Sprintf("%s-%s", safeJobName(name), stamp))
}

// formatPbsWalltime formats a duration as HH:MM:SS (PBS has no day prefix).
func formatPbsWalltime(d time.Duration) string {
	total := int64(d.Seconds())
	hours := total / 3600
	rem := total % 3600
	minutes := rem / 60
	seconds := rem % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Submit submits a PBS job script via qsub
func (p *PbsScheduler) Submit(scriptPath string) (string, error) {
	cmd := exec.Command(p.qsubBin, scriptPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", NewSubmissionError("PBS", filepath.Base(scriptPath), string(output), err)
	}

	// qsub prints the job ID alone on stdout (e.g. "12345.pbsserver")
	jobID := strings.TrimSpace(string(output))
	if !p.jobIDRe.MatchString(jobID) {
		return "", fmt.Errorf("%w: %s", ErrJobIDParseFailed, string(output))
	}

	return jobID, nil
}
