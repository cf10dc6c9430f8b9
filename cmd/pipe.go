package cmd

import "github.com/spf13/cobra"

var pipeCmd = &cobra.Command{
	Use:   "pipe <pattern> [text...]",
	Short: "Print the complete reply in one piece",
	Long: `Send text through a pattern and print the full reply once it is
complete, for piping into other commands.

Examples:
  cat error.log | weave pipe triage | tee triage.md
  weave pipe translate "guten morgen" | pbcopy`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExchange(cmd, args, false)
	},
}

func init() {
	rootCmd.AddCommand(pipeCmd)
}
