package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weavecli/weave/internal/config"
	"github.com/weavecli/weave/internal/session"
)

var sessionsKeep int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored session transcripts",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := sessionManager()
		if err != nil {
			return err
		}
		names, err := mgr.List()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := sessionManager()
		if err != nil {
			return err
		}
		sess, err := mgr.Load(args[0])
		if err != nil {
			return err
		}
		defer sess.Close()

		for _, entry := range sess.Entries() {
			if !entry.Known() {
				continue
			}
			label := entry.Role
			if entry.Pattern != "" {
				label = fmt.Sprintf("%s (%s)", entry.Role, entry.Pattern)
			}
			fmt.Printf("--- %s ---\n%s\n", label, entry.Content)
		}
		return nil
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear <name>",
	Short: "Delete a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := sessionManager()
		if err != nil {
			return err
		}
		// Deletes without parsing, so corrupt transcripts clear too.
		return mgr.Remove(args[0])
	},
}

var sessionsPruneCmd = &cobra.Command{
	Use:   "prune <name>",
	Short: "Trim a session down to its most recent entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := sessionManager()
		if err != nil {
			return err
		}
		sess, err := mgr.Load(args[0])
		if err != nil {
			return err
		}
		defer sess.Close()

		discarded, err := sess.Prune(sessionsKeep)
		if err != nil {
			return err
		}
		fmt.Printf("Discarded %d entries, kept %d.\n", len(discarded), len(sess.Entries()))
		return nil
	},
}

func sessionManager() (*session.Manager, error) {
	dir, err := config.SessionsDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate sessions dir: %w", err)
	}
	return session.NewManager(dir), nil
}

func init() {
	sessionsPruneCmd.Flags().IntVar(&sessionsKeep, "keep", 20, "Number of most recent entries to keep")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsClearCmd, sessionsPruneCmd)
	rootCmd.AddCommand(sessionsCmd)
}
