package job

import (
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/hcopt/jobsub/internal/utils"
)

// RunLocal executes a composed job body directly through bash, for use
// when no scheduler is available or --local was given. The child's exit
// code is returned unchanged (0 on success).
func RunLocal(body string) (int, error) {
	cmd := exec.Command("/bin/bash", "-c", body)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	utils.PrintDebug("Running job body locally via %s", utils.StyleCommand("/bin/bash -c"))

	err := runWithSignalForwarding(cmd)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, err
	}
	return 0, nil
}

// runWithSignalForwarding runs a command while intercepting SIGINT/SIGTERM
// so the Go process doesn't terminate before the child handles the signal.
func runWithSignalForwarding(cmd *exec.Cmd) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		return err
	case sig := <-sigChan:
		if cmd.Process != nil {
			cmd.Process.Signal(sig)
		}
		// Wait for the child to finish handling the signal
		return <-done
	}
}
