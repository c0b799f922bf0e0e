package job

import (
	"strings"
	"testing"
	"time"

	"github.com/hcopt/jobsub/internal/config"
	"github.com/hcopt/jobsub/internal/env"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	config.LoadDefaults()
	cfg := config.Global
	return &cfg
}

func testManager(t *testing.T) *env.Manager {
	t.Helper()
	manager, err := env.NewManager("conda")
	if err != nil {
		t.Fatalf("failed to create env manager: %v", err)
	}
	return manager
}

func TestComposeLaunchBodyForwardsArgs(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string // final invocation line
	}{
		{"no arguments", nil, "python main.py"},
		{"instance ids", []string{"1", "2", "3"}, "python main.py 1 2 3"},
		{"flag-like args", []string{"-verbose", "7"}, "python main.py -verbose 7"},
		{"arg with spaces", []string{"two words"}, "python main.py 'two words'"},
		{"empty arg preserved", []string{"a", "", "b"}, "python main.py a '' b"},
		{"shell metacharacters", []string{"$HOME", "a;b"}, "python main.py '$HOME' 'a;b'"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			body := ComposeLaunchBody(testManager(t), testConfig(t), tt.args)
			lines := strings.Split(body, "\n")
			last := lines[len(lines)-1]
			if last != tt.want {
				t.Errorf("invocation = %q; want %q", last, tt.want)
			}
		})
	}
}

func TestComposeLaunchBodyActivationBeforeProgram(t *testing.T) {
	body := ComposeLaunchBody(testManager(t), testConfig(t), []string{"7"})

	activateIdx := strings.Index(body, "conda activate solver-env")
	programIdx := strings.Index(body, "python main.py 7")
	if activateIdx < 0 || programIdx < 0 {
		t.Fatalf("body missing activation or invocation:\n%s", body)
	}
	if activateIdx > programIdx {
		t.Errorf("program invoked before activation:\n%s", body)
	}
	// Failed activation must not fall through to the program
	guardIdx := strings.Index(body, "exit 1")
	if guardIdx < 0 || guardIdx > programIdx {
		t.Errorf("activation guard missing or after invocation:\n%s", body)
	}
}

func TestComposeBootstrapBodyOrdering(t *testing.T) {
	body := ComposeBootstrapBody(testManager(t), testConfig(t))

	steps := []string{
		"env remove --yes --name solver-env",
		"create --yes --name solver-env python=3.10",
		"conda activate solver-env",
		"[ ! -f requirements.txt ]",
		"pip install -r requirements.txt",
		"python main.py",
	}

	prev := -1
	for _, step := range steps {
		idx := strings.Index(body, step)
		if idx < 0 {
			t.Fatalf("body missing step %q:\n%s", step, body)
		}
		if idx < prev {
			t.Errorf("step %q out of order:\n%s", step, body)
		}
		prev = idx
	}

	// The removal must tolerate a nonexistent environment
	if !strings.Contains(body, "|| true") {
		t.Errorf("environment removal is not idempotent:\n%s", body)
	}
	// The program runs with no arguments
	lines := strings.Split(body, "\n")
	if last := lines[len(lines)-1]; last != "python main.py" {
		t.Errorf("invocation = %q; want bare program command", last)
	}
}

func TestComposeBootstrapBodyInstallPolicy(t *testing.T) {
	cfg := testConfig(t)

	cfg.Env.FailOnInstall = true
	failClosed := ComposeBootstrapBody(testManager(t), cfg)
	if !strings.Contains(failClosed, "Dependency installation from requirements.txt failed") {
		t.Errorf("fail-closed body missing install guard:\n%s", failClosed)
	}

	cfg.Env.FailOnInstall = false
	keepGoing := ComposeBootstrapBody(testManager(t), cfg)
	if !strings.Contains(keepGoing, "continuing") {
		t.Errorf("keep-going body missing continue diagnostic:\n%s", keepGoing)
	}
}

func TestNewSpec(t *testing.T) {
	profile := config.Profile{
		JobName:   "solver",
		Partition: "mid",
		Qos:       "users",
		Ntasks:    1,
		Ncpus:     32,
		MemMB:     131072,
		Time:      24 * time.Hour,
		MailAll:   true,
		Stdout:    "%j.out",
		Stderr:    "%j.err",
	}

	spec := NewSpec(profile, "python main.py", map[string]string{"Program": "python main.py"})

	if spec.Name != "solver" || spec.Partition != "mid" || spec.Qos != "users" {
		t.Errorf("spec identity fields not mapped: %+v", spec)
	}
	if spec.Ntasks != 1 || spec.Ncpus != 32 || spec.MemMB != 131072 {
		t.Errorf("spec resource fields not mapped: %+v", spec)
	}
	if spec.Time != 24*time.Hour {
		t.Errorf("spec.Time = %v; want 24h", spec.Time)
	}
	if !spec.MailAll || spec.Stdout != "%j.out" || spec.Stderr != "%j.err" {
		t.Errorf("spec notification/log fields not mapped: %+v", spec)
	}
	if spec.Body != "python main.py" {
		t.Errorf("spec.Body = %q; want body unchanged", spec.Body)
	}
	if spec.Metadata["Program"] != "python main.py" {
		t.Errorf("spec.Metadata not carried: %v", spec.Metadata)
	}
}
