// Package config loads lostfound settings from defaults, a YAML config
// file, a .env file, the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/spcet/lostfound/internal/assistant"
)

// EnvPrefix prefixes every environment variable, e.g. LOSTFOUND_AI_API_KEY.
const EnvPrefix = "LOSTFOUND"

// Config is the effective configuration of the server and the CLI client.
type Config struct {
	DB           string        `mapstructure:"db" yaml:"db"`
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	Log          string        `mapstructure:"log" yaml:"log"`
	AdminUser    string        `mapstructure:"admin_user" yaml:"admin_user"`
	LoginRate    int           `mapstructure:"login_rate" yaml:"login_rate"`
	AI           AI            `mapstructure:"ai" yaml:"ai"`
	ServerURL    string        `mapstructure:"server_url" yaml:"server_url"`
	SessionFile  string        `mapstructure:"session_file" yaml:"session_file"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// AI selects and tunes the question and review assistant.
type AI struct {
	Provider string        `mapstructure:"provider" yaml:"provider"`
	APIKey   string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url"`
	Model    string        `mapstructure:"model" yaml:"model"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Rate     float64       `mapstructure:"rate" yaml:"rate"`
}

// SetDefaults registers every key so the environment can override it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("db", "lostfound.db")
	v.SetDefault("addr", ":8080")
	v.SetDefault("log", "")
	v.SetDefault("admin_user", "admin")
	v.SetDefault("login_rate", 10)
	v.SetDefault("ai.provider", "none")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.rate", 0)
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("session_file", defaultSessionFile())
	v.SetDefault("poll_interval", 30*time.Second)
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lostfound-session.json"
	}
	return filepath.Join(home, ".lostfound", "session.json")
}

// Load fills v and returns the decoded configuration. configFile overrides
// the search for lostfound.yaml in the working directory and
// $HOME/.lostfound. A .env file in the working directory is loaded into the
// environment without replacing variables that are already set.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("lostfound")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".lostfound"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.LoginRate < 0 {
		return fmt.Errorf("login_rate must not be negative")
	}
	if c.AI.Rate < 0 {
		return fmt.Errorf("ai.rate must not be negative")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	switch c.AI.Provider {
	case "", "none", "openai":
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	return nil
}

// Assistant returns the assistant settings.
func (c *Config) Assistant() assistant.Config {
	return assistant.Config{
		APIKey:  c.AI.APIKey,
		BaseURL: c.AI.BaseURL,
		Model:   c.AI.Model,
		Timeout: c.AI.Timeout,
		Rate:    c.AI.Rate,
	}
}

// YAML renders the configuration with the API key masked.
func (c Config) YAML() ([]byte, error) {
	if c.AI.APIKey != "" {
		c.AI.APIKey = "********"
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}
