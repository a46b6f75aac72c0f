// Package config loads the application configuration from a YAML file with
// environment variable overrides. Defaults are applied in code so a missing
// config file still yields a working development setup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads config.yaml from the standard search paths, merges environment
// overrides (EVOLVEUI_SECTION_KEY), applies defaults and validates. A
// missing config file is not an error.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return finish(v)
}

// LoadFromFile reads configuration from an explicit path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return finish(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("EVOLVEUI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func finish(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideFromEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads a .env file when present. Absence is normal outside
// development.
func loadEnvFile() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// overrideFromEnv fills credentials that are conventionally passed as plain
// environment variables rather than through the config file.
func overrideFromEnv(cfg *Config) {
	if cfg.Embedding.APIKey == "" {
		switch cfg.Embedding.Provider {
		case "openai":
			cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
		case "gemini":
			cfg.Embedding.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}

	for i := range cfg.Search.Providers {
		p := &cfg.Search.Providers[i]
		if p.APIKey != "" {
			continue
		}
		switch p.ID {
		case "google":
			p.APIKey = os.Getenv("GOOGLE_SEARCH_API_KEY")
			if p.EngineID == "" {
				p.EngineID = os.Getenv("GOOGLE_SEARCH_ENGINE_ID")
			}
		case "bing":
			p.APIKey = os.Getenv("BING_SEARCH_API_KEY")
		}
	}
}
