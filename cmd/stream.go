package cmd

import "github.com/spf13/cobra"

var streamCmd = &cobra.Command{
	Use:   "stream <pattern> [text...]",
	Short: "Stream the reply as it is generated",
	Long: `Send text through a pattern and write reply tokens to stdout as they
arrive. Text comes from the arguments or, when piped, from stdin.

Examples:
  cat report.md | weave stream summarize
  weave stream explain "why does TCP need a three-way handshake?"
  git diff | weave stream review --session release-42`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExchange(cmd, args, true)
	},
}

func init() {
	rootCmd.AddCommand(streamCmd)
}
