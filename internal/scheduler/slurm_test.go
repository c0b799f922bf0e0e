package scheduler

import (
	"os"
	"regexp"
	"strings"
	"testing"
	"time"
)

// newTestSlurmScheduler creates a SLURM scheduler instance for testing
// without requiring sbatch to be installed
func newTestSlurmScheduler() *SlurmScheduler {
	return &SlurmScheduler{
		sbatchBin: "/usr/bin/sbatch", // fake path for testing
		jobIDRe:   regexp.MustCompile(`Submitted batch job (\d+)`),
	}
}

func launchTestSpec() *JobSpec {
	return &JobSpec{
		Name:      "solver",
		Partition: "mid",
		Qos:       "users",
		Ntasks:    1,
		Ncpus:     32,
		MemMB:     128 * 1024,
		Time:      24 * time.Hour,
		MailAll:   true,
		Stdout:    "%j.out",
		Stderr:    "%j.err",
		Body:      "python main.py 7",
	}
}

func TestSlurmCreateScriptDirectives(t *testing.T) {
	tmpDir := t.TempDir()
	slurm := newTestSlurmScheduler()

	scriptPath, err := slurm.CreateScript(launchTestSpec(), tmpDir)
	if err != nil {
		t.Fatalf("CreateScript failed: %v", err)
	}

	content, err := os.ReadFile(scriptPath)
	if err != nil {
		t.Fatalf("failed to read generated script: %v", err)
	}
	script := string(content)

	wantLines := []string{
		"#SBATCH --job-name=solver",
		"#SBATCH --partition=mid",
		"#SBATCH --qos=users",
		"#SBATCH --ntasks=1",
		"#SBATCH --cpus-per-task=32",
		"#SBATCH --mem=131072mb",
		"#SBATCH --time=1-00:00:00",
		"#SBATCH --output=%j.out",
		"#SBATCH --error=%j.err",
		"#SBATCH --mail-type=ALL",
	}
	for _, line := range wantLines {
		if !strings.Contains(script, line+"\n") {
			t.Errorf("script missing directive %q\nScript content:\n%s", line, script)
		}
	}

	if !strings.HasPrefix(script, "#!/bin/bash\n") {
		t.Errorf("script does not start with shebang:\n%s", script)
	}
	// No GPUs requested, no mail-user override
	if strings.Contains(script, "--gres=") {
		t.Errorf("script should not contain --gres directive:\n%s", script)
	}
	if strings.Contains(script, "--mail-user=") {
		t.Errorf("script should not contain --mail-user directive:\n%s", script)
	}

	info, err := os.Stat(scriptPath)
	if err != nil {
		t.Fatalf("failed to stat script: %v", err)
	}
	if info.Mode()&0111 == 0 {
		t.Errorf("script is not executable: mode %v", info.Mode())
	}
}

func TestSlurmCreateScriptGpuDirective(t *testing.T) {
	cases := []struct {
		name     string
		ngpus    int
		gpuType  string
		wantLine string
	}{
		{"generic GPU", 1, "", "#SBATCH --gres=gpu:1"},
		{"typed GPU", 2, "a100", "#SBATCH --gres=gpu:a100:2"},
		{"gpu type alias", 1, "gpu", "#SBATCH --gres=gpu:1"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			spec := launchTestSpec()
			spec.Ngpus = tt.ngpus
			spec.GpuType = tt.gpuType

			slurm := newTestSlurmScheduler()
			scriptPath, err := slurm.CreateScript(spec, t.TempDir())
			if err != nil {
				t.Fatalf("CreateScript failed: %v", err)
			}
			content, err := os.ReadFile(scriptPath)
			if err != nil {
				t.Fatalf("failed to read generated script: %v", err)
			}
			if !strings.Contains(string(content), tt.wantLine+"\n") {
				t.Errorf("script missing %q:\n%s", tt.wantLine, content)
			}
		})
	}
}

func TestSlurmCreateScriptExitCodePropagation(t *testing.T) {
	slurm := newTestSlurmScheduler()
	scriptPath, err := slurm.CreateScript(launchTestSpec(), t.TempDir())
	if err != nil {
		t.Fatalf("CreateScript failed: %v", err)
	}
	content, err := os.ReadFile(scriptPath)
	if err != nil {
		t.Fatalf("failed to read generated script: %v", err)
	}
	script := string(content)

	// The status capture must come directly after the body so the footer
	// echoes cannot clobber the program's exit code.
	bodyIdx := strings.Index(script, "python main.py 7")
	rcIdx := strings.Index(script, "_RC=$?")
	exitIdx := strings.Index(script, "exit $_RC")
	if bodyIdx < 0 || rcIdx < 0 || exitIdx < 0 {
		t.Fatalf("script missing body, capture, or exit:\n%s", script)
	}
	if !(bodyIdx < rcIdx && rcIdx < exitIdx) {
		t.Errorf("expected body < _RC capture < exit ordering, got %d/%d/%d:\n%s",
			bodyIdx, rcIdx, exitIdx, script)
	}
	between := script[bodyIdx+len("python main.py 7") : rcIdx]
	if strings.Contains(between, "echo") {
		t.Errorf("commands run between body and exit-status capture:\n%s", between)
	}
	if !strings.HasSuffix(strings.TrimRight(script, "\n"), "exit $_RC") {
		t.Errorf("script does not end with exit $_RC:\n%s", script)
	}
}

func TestSlurmCreateScriptEmptyBody(t *testing.T) {
	slurm := newTestSlurmScheduler()
	for _, body := range []string{"", "   \n\t"} {
		spec := launchTestSpec()
		spec.Body = body
		if _, err := slurm.CreateScript(spec, t.TempDir()); err == nil {
			t.Errorf("CreateScript with body %q expected error, got nil", body)
		}
	}
}

func TestSlurmCreateScriptUniqueNames(t *testing.T) {
	tmpDir := t.TempDir()
	slurm := newTestSlurmScheduler()

	first, err := slurm.CreateScript(launchTestSpec(), tmpDir)
	if err != nil {
		t.Fatalf("first CreateScript failed: %v", err)
	}
	second, err := slurm.CreateScript(launchTestSpec(), tmpDir)
	if err != nil {
		t.Fatalf("second CreateScript failed: %v", err)
	}
	if first == second {
		t.Errorf("two submissions produced the same script path: %s", first)
	}
}

func TestSlurmJobIDParsing(t *testing.T) {
	slurm := newTestSlurmScheduler()

	cases := map[string]string{
		"Submitted batch job 12345":            "12345",
		"Submitted batch job 12345\n":          "12345",
		"sbatch: note\nSubmitted batch job 42": "42",
	}
	for output, want := range cases {
		matches := slurm.jobIDRe.FindStringSubmatch(output)
		if len(matches) < 2 {
			t.Errorf("no job ID parsed from %q", output)
			continue
		}
		if matches[1] != want {
			t.Errorf("job ID from %q = %q; want %q", output, matches[1], want)
		}
	}

	if m := slurm.jobIDRe.FindStringSubmatch("sbatch: error: invalid partition"); m != nil {
		t.Errorf("unexpectedly parsed job ID from error output: %v", m)
	}
}

func TestFormatSlurmTime(t *testing.T) {
	cases := map[time.Duration]string{
		24 * time.Hour:                 "1-00:00:00",
		48 * time.Hour:                 "2-00:00:00",
		2 * time.Hour:                  "02:00:00",
		90 * time.Minute:               "01:30:00",
		25*time.Hour + 30*time.Minute: "1-01:30:00",
		45 * time.Second:               "00:00:45",
		0:                              "",
	}

	for input, want := range cases {
		if got := FormatSlurmTime(input); got != want {
			t.Errorf("FormatSlurmTime(%v) = %q; want %q", input, got, want)
		}
	}
}
