package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weavecli/weave/internal/config"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List available patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		source, err := patternSource(cfg)
		if err != nil {
			return err
		}
		names, err := source.Names()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(patternsCmd)
}
