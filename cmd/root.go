package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/weavecli/weave/internal/exitcode"
	"github.com/weavecli/weave/internal/logging"
)

var (
	flagProvider string
	flagModel    string
	flagSession  string
	flagPatterns string
	flagLogLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "Provider to use (anthropic, openai, gemini)")
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "Model name (defaults to the provider's configured model)")
	rootCmd.PersistentFlags().StringVar(&flagSession, "session", "", "Named session to record the exchange in")
	rootCmd.PersistentFlags().StringVar(&flagPatterns, "extra-patterns", os.Getenv("WEAVE_EXTRA_PATTERNS"), "Semicolon-separated list of extra pattern directories")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

var rootCmd = &cobra.Command{
	Use:   "weave",
	Short: "Pipe text through named patterns to an LLM",
	Long: `weave sends text through a named pattern (a system prompt) to an LLM
provider, streaming the reply to stdout. Named sessions keep an appendable
transcript so follow-up queries carry context.

Examples:
  cat notes.md | weave stream summarize
  weave pipe explain "what does SIGPIPE do?" | less
  weave stream chat --session kitchen-reno "what tile did we pick?"
  weave patterns
  weave sessions list`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.ParseLevel(flagLogLevel), os.Stderr)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(exitcode.ExitError); ok {
			os.Exit(exitErr.Code)
		}
		os.Exit(exitcode.Error)
	}
}
