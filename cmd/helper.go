package cmd

import (
	"os"

	"github.com/hcopt/jobsub/internal/utils"
)

// ExitWithError prints an error message and exits with a non-zero status.
func ExitWithError(format string, a ...interface{}) {
	utils.PrintError(format, a...)
	os.Exit(1)
}
