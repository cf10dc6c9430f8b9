package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/weavecli/weave/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the config, patterns, and sessions directories",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("failed to get config dir: %w", err)
	}

	for _, sub := range []string{"patterns", "sessions"} {
		path := filepath.Join(dir, sub)
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
	}

	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists at %s\n", configPath)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", configPath)
	fmt.Printf("Put patterns in %s/<name>/system.md and an API key in the\n", filepath.Join(dir, "patterns"))
	fmt.Printf("environment (ANTHROPIC_API_KEY) or %s\n", filepath.Join(dir, ".env"))
	return nil
}
