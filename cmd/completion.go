package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// detectShell auto-detects the current shell from environment
func detectShell() string {
	shell := strings.ToLower(os.Getenv("SHELL"))

	if strings.Contains(shell, "fish") {
		return "fish"
	}
	if strings.Contains(shell, "zsh") {
		return "zsh"
	}
	return "bash"
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for jobsub.

If no shell is specified, the shell is auto-detected from $SHELL.

To load completions:

Bash:
  $ source <(jobsub completion bash)

Zsh:
  $ jobsub completion zsh > "${fpath[1]}/_jobsub"

Fish:
  $ jobsub completion fish | source
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		shell := detectShell()
		if len(args) > 0 {
			shell = args[0]
		}

		// Show only long options in completions; restore shorthands after
		saved := stripShortFlagShorthands(cmd.Root())
		defer restoreShortFlagShorthands(cmd.Root(), saved)

		switch shell {
		case "bash":
			cmd.Root().GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			cmd.Root().GenFishCompletion(os.Stdout, true)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// stripShortFlagShorthands clears the Shorthand field for every flag in the
// command tree, returning the saved values so they can be restored.
func stripShortFlagShorthands(root *cobra.Command) map[string]string {
	saved := make(map[string]string)

	stripFlag := func(f *pflag.Flag) {
		if f.Shorthand != "" {
			saved[f.Name] = f.Shorthand
			f.Shorthand = ""
		}
	}

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.LocalFlags().VisitAll(stripFlag)
		c.PersistentFlags().VisitAll(stripFlag)
		c.InheritedFlags().VisitAll(stripFlag)
		for _, child := range c.Commands() {
			walk(child)
		}
	}
	walk(root)
	return saved
}

// restoreShortFlagShorthands restores previously-saved shorthand values.
func restoreShortFlagShorthands(root *cobra.Command, saved map[string]string) {
	restoreFlag := func(f *pflag.Flag) {
		if old, ok := saved[f.Name]; ok {
			f.Shorthand = old
		}
	}

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.LocalFlags().VisitAll(restoreFlag)
		c.PersistentFlags().VisitAll(restoreFlag)
		c.InheritedFlags().VisitAll(restoreFlag)
		for _, child := range c.Commands() {
			walk(child)
		}
	}
	walk(root)
}
