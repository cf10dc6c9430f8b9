package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weavecli/weave/internal/config"
	"github.com/weavecli/weave/internal/exitcode"
	"github.com/weavecli/weave/internal/llm"
	"github.com/weavecli/weave/internal/patterns"
	"github.com/weavecli/weave/internal/session"
	"github.com/weavecli/weave/internal/signal"
)

// patternSource assembles the pattern lookup chain: the base directory,
// then config extras, then the --extra-patterns flag.
func patternSource(cfg *config.Config) (*patterns.Source, error) {
	base, err := config.PatternsDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate patterns dir: %w", err)
	}

	extra := append([]string{}, cfg.ExtraPatterns...)
	for _, dir := range strings.Split(flagPatterns, ";") {
		if strings.TrimSpace(dir) != "" {
			extra = append(extra, dir)
		}
	}
	return patterns.NewSource(base, extra...), nil
}

// readInput returns the query text: trailing args joined, or stdin when
// it is a pipe. An interactive terminal with no args is an input error.
func readInput(args []string, stdin io.Reader, stdinFd int) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if term.IsTerminal(stdinFd) {
		return "", exitcode.Input("no input: pass text as arguments or pipe it on stdin")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return "", exitcode.Input("no input: stdin was empty")
	}
	return text, nil
}

// finishExchange maps an interrupted exchange to the interrupt exit code.
// Partial output already written to the sink stays.
func finishExchange(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return exitcode.Cancel()
	}
	return err
}

// runExchange drives one exchange: resolve pattern, build the provider
// client, bind the session, and send or stream.
func runExchange(cmd *cobra.Command, args []string, streaming bool) error {
	ctx, stop := signal.NotifyContext()
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	text, err := readInput(args[1:], os.Stdin, int(os.Stdin.Fd()))
	if err != nil {
		return err
	}

	source, err := patternSource(cfg)
	if err != nil {
		return err
	}
	pat, err := source.Get(args[0])
	if err != nil {
		return err
	}

	provider, err := llm.NewProvider(cfg, flagProvider)
	if err != nil {
		return err
	}
	model := flagModel
	if model == "" {
		model = llm.DefaultModel(cfg, flagProvider)
	}
	client, err := provider.Client(model)
	if err != nil {
		return err
	}

	sessDir, err := config.SessionsDir()
	if err != nil {
		return fmt.Errorf("failed to locate sessions dir: %w", err)
	}
	sess, err := session.NewManager(sessDir).Get(flagSession)
	if err != nil {
		return err
	}
	defer sess.Close()

	chat := session.NewChat(sess, client, session.Params{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if streaming {
		return finishExchange(ctx, chat.Stream(ctx, pat, text, out))
	}
	return finishExchange(ctx, chat.Send(ctx, pat, text, out))
}
