package config

import (
	"fmt"
	"time"

	"github.com/bfforex/EvolveUI/internal/websearch"
)

// Config is the top-level application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Intent    IntentConfig    `mapstructure:"intent"`
	Search    SearchConfig    `mapstructure:"search"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Assembler AssemblerConfig `mapstructure:"assembler"`
	Engine    EngineConfig    `mapstructure:"engine"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// MetricsConfig controls the Prometheus scrape endpoint. An empty address
// disables the listener; collectors are registered either way.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

type IntentConfig struct {
	Threshold float64       `mapstructure:"threshold"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

type SearchConfig struct {
	Providers        []websearch.ProviderConfig `mapstructure:"providers"`
	PerProviderLimit int                        `mapstructure:"per_provider_limit"`
	OverallTimeout   time.Duration              `mapstructure:"overall_timeout"`
	FailureThreshold int                        `mapstructure:"failure_threshold"`
	Cooldown         time.Duration              `mapstructure:"cooldown"`
}

type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"` // openai, ollama, gemini, local
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Dimensions int    `mapstructure:"dimensions"`
	CacheSize  int    `mapstructure:"cache_size"`
}

type KnowledgeConfig struct {
	DBPath                string  `mapstructure:"db_path"`
	WatchDir              string  `mapstructure:"watch_dir"`
	DocumentThreshold     float64 `mapstructure:"document_threshold"`
	ConversationThreshold float64 `mapstructure:"conversation_threshold"`
	MaxDocuments          int     `mapstructure:"max_documents"`
	MaxConversations      int     `mapstructure:"max_conversations"`
}

type CacheConfig struct {
	Backend    string        `mapstructure:"backend"` // memory or redis
	MaxEntries int           `mapstructure:"max_entries"`
	SearchTTL  time.Duration `mapstructure:"search_ttl"`
	Redis      RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AssemblerConfig struct {
	MaxSources       int `mapstructure:"max_sources"`
	MaxContextLength int `mapstructure:"max_context_length"`
}

type EngineConfig struct {
	OverallTimeout time.Duration `mapstructure:"overall_timeout"`
	RecentTurns    int           `mapstructure:"recent_turns"`
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "evolveui"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Intent.Threshold == 0 {
		cfg.Intent.Threshold = 0.5
	}
	if cfg.Intent.CacheTTL == 0 {
		cfg.Intent.CacheTTL = time.Hour
	}

	if len(cfg.Search.Providers) == 0 {
		cfg.Search.Providers = websearch.DefaultConfigs()
	}
	if cfg.Search.PerProviderLimit == 0 {
		cfg.Search.PerProviderLimit = websearch.DefaultPerProviderLimit
	}
	if cfg.Search.OverallTimeout == 0 {
		cfg.Search.OverallTimeout = websearch.DefaultOverallTimeout
	}
	if cfg.Search.FailureThreshold == 0 {
		cfg.Search.FailureThreshold = websearch.DefaultFailureThreshold
	}
	if cfg.Search.Cooldown == 0 {
		cfg.Search.Cooldown = websearch.DefaultCooldown
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "local"
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}

	if cfg.Knowledge.DBPath == "" {
		cfg.Knowledge.DBPath = "evolveui.db"
	}
	if cfg.Knowledge.DocumentThreshold == 0 {
		cfg.Knowledge.DocumentThreshold = 0.6
	}
	if cfg.Knowledge.ConversationThreshold == 0 {
		cfg.Knowledge.ConversationThreshold = 0.2
	}
	if cfg.Knowledge.MaxDocuments == 0 {
		cfg.Knowledge.MaxDocuments = 3
	}
	if cfg.Knowledge.MaxConversations == 0 {
		cfg.Knowledge.MaxConversations = 2
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 1000
	}
	if cfg.Cache.SearchTTL == 0 {
		cfg.Cache.SearchTTL = 15 * time.Minute
	}

	if cfg.Assembler.MaxSources == 0 {
		cfg.Assembler.MaxSources = 5
	}
	if cfg.Assembler.MaxContextLength == 0 {
		cfg.Assembler.MaxContextLength = 4000
	}

	if cfg.Engine.OverallTimeout == 0 {
		cfg.Engine.OverallTimeout = 15 * time.Second
	}
	if cfg.Engine.RecentTurns == 0 {
		cfg.Engine.RecentTurns = 2
	}
}

func validate(cfg *Config) error {
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}

	if cfg.Intent.Threshold < 0 || cfg.Intent.Threshold > 1 {
		return fmt.Errorf("intent.threshold must be in [0,1], got %v", cfg.Intent.Threshold)
	}

	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		if cfg.Cache.Redis.Address == "" {
			return fmt.Errorf("cache.redis.address is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", cfg.Cache.Backend)
	}

	switch cfg.Embedding.Provider {
	case "openai", "ollama", "gemini", "local":
	default:
		return fmt.Errorf("embedding.provider must be openai, ollama, gemini or local, got %q",
			cfg.Embedding.Provider)
	}

	if cfg.Assembler.MaxContextLength < 0 {
		return fmt.Errorf("assembler.max_context_length must be non-negative")
	}

	return nil
}
