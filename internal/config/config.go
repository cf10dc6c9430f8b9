package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Provider      string         `mapstructure:"provider"`
	MaxTokens     int            `mapstructure:"max_tokens"`
	Temperature   float64        `mapstructure:"temperature"`
	ExtraPatterns []string       `mapstructure:"extra_patterns"`
	Anthropic     ProviderConfig `mapstructure:"anthropic"`
	OpenAI        ProviderConfig `mapstructure:"openai"`
	Gemini        ProviderConfig `mapstructure:"gemini"`
}

type ProviderConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Load reads the config file (optional), layering env vars on top.
// A .env in the config dir or the cwd is loaded first so keys placed
// there behave exactly like exported environment variables.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	loadDotenv(dir)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(dir)
	viper.AddConfigPath(".")

	viper.SetDefault("provider", "anthropic")
	viper.SetDefault("max_tokens", 4096)
	viper.SetDefault("temperature", 1.0)
	viper.SetDefault("anthropic.model", "claude-3-5-sonnet-20240620")
	viper.SetDefault("openai.model", "gpt-4o")
	viper.SetDefault("gemini.model", "gemini-2.0-flash")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.OpenAI.APIKey = expandEnv(cfg.OpenAI.APIKey)
	cfg.Gemini.APIKey = expandEnv(cfg.Gemini.APIKey)

	if cfg.Anthropic.APIKey == "" {
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	return &cfg, nil
}

func loadDotenv(configDir string) {
	if path := filepath.Join(configDir, ".env"); fileExists(path) {
		_ = godotenv.Load(path)
	}
	_ = godotenv.Load()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// Dir returns the weave config directory.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "weave"), nil
}

// PatternsDir returns the directory holding pattern folders.
func PatternsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "patterns"), nil
}

// SessionsDir returns the directory holding session transcripts.
func SessionsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

// Save writes a starter config to disk, creating the directory tree.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`provider: %s

max_tokens: %d
temperature: %g

# API keys may be literals, ${ENV_VAR} references, or left empty to fall
# back to ANTHROPIC_API_KEY / OPENAI_API_KEY / GEMINI_API_KEY.
anthropic:
  model: %s

openai:
  model: %s

gemini:
  model: %s

# Extra directories searched for patterns, highest priority last.
# extra_patterns:
#   - ~/projects/prompts
`, cfg.Provider, cfg.MaxTokens, cfg.Temperature, cfg.Anthropic.Model, cfg.OpenAI.Model, cfg.Gemini.Model)

	return os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600)
}
