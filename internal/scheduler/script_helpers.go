package scheduler

import (
	"bufio"
	"fmt"
	"strings"
)

// safeJobName makes a job name usable as a filename component.
func safeJobName(name string) string {
	if name == "" {
		return "job"
	}
	safe := strings.ReplaceAll(name, "/", "--")
	return strings.ReplaceAll(safe, " ", "_")
}

// writeBanner emits the job information header echoed at job start.
// jobIDVar is the scheduler's job ID environment variable reference.
func writeBanner(writer *bufio.Writer, spec *JobSpec, jobIDVar string) {
	fmt.Fprintln(writer, "# Print job information")
	fmt.Fprintln(writer, "_START_TIME=$SECONDS")
	fmt.Fprintf(writer, "%s\n", "_format_time() { local s=$1; printf '%02d:%02d:%02d' $((s/3600)) $((s%3600/60)) $((s%60)); }")
	fmt.Fprintln(writer, "echo \"========================================\"")
	fmt.Fprintf(writer, "echo \"Job ID:    %s\"\n", jobIDVar)
	fmt.Fprintf(writer, "echo \"Job Name:  %s\"\n", spec.Name)
	if spec.Partition != "" {
		fmt.Fprintf(writer, "echo \"Partition: %s\"\n", spec.Partition)
	}
	if spec.Ncpus > 0 {
		fmt.Fprintf(writer, "echo \"CPUs/Task: %d\"\n", spec.Ncpus)
	}
	if spec.MemMB > 0 {
		fmt.Fprintf(writer, "echo \"Memory:    %d MB\"\n", spec.MemMB)
	}
	if spec.Ngpus > 0 {
		fmt.Fprintf(writer, "echo \"GPUs:      %d\"\n", spec.Ngpus)
	}
	if spec.Time > 0 {
		fmt.Fprintf(writer, "echo \"Time:      %s\"\n", FormatSlurmTime(spec.Time))
	}
	fmt.Fprintln(writer, "echo \"PWD:       $(pwd)\"")
	if len(spec.Metadata) > 0 {
		maxLen := 0
		for key := range spec.Metadata {
			if len(key) > maxLen {
				maxLen = len(key)
			}
		}
		for key, value := range spec.Metadata {
			if value != "" {
				padding := maxLen - len(key)
				fmt.Fprintf(writer, "echo \"%s:%s %s\"\n", key, strings.Repeat(" ", padding+3), value)
			}
		}
	}
	fmt.Fprintf(writer, "%s\n", "echo \"Started:   $(date '+%Y-%m-%d %T')\"")
	fmt.Fprintln(writer, "echo \"========================================\"")
}

// writeFooter emits the completion block. The body's exit status is captured
// before the footer echoes run, so the script exits with the external
// program's code unchanged.
func writeFooter(writer *bufio.Writer, jobIDVar string) {
	fmt.Fprintln(writer, "_RC=$?")
	fmt.Fprintln(writer, "echo \"========================================\"")
	fmt.Fprintf(writer, "echo \"Job ID:    %s\"\n", jobIDVar)
	fmt.Fprintln(writer, "echo \"Exit Code: $_RC\"")
	fmt.Fprintln(writer, "echo \"Elapsed:   $(_format_time $(($SECONDS - $_START_TIME)))\"")
	fmt.Fprintf(writer, "%s\n", "echo \"Completed: $(date '+%Y-%m-%d %T')\"")
	fmt.Fprintln(writer, "echo \"========================================\"")
	fmt.Fprintln(writer, "exit $_RC")
}
