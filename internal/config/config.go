package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Feed       FeedConfig       `yaml:"feed" mapstructure:"feed"`
	Analysis   AnalysisConfig   `yaml:"analysis" mapstructure:"analysis"`
	Pricing    PricingConfig    `yaml:"pricing" mapstructure:"pricing"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key                 string `yaml:"key" mapstructure:"key"`
	HaikuModel          string `yaml:"haiku_model" mapstructure:"haiku_model"`
	SonnetModel         string `yaml:"sonnet_model" mapstructure:"sonnet_model"`
	MaxBatchSize        int    `yaml:"max_batch_size" mapstructure:"max_batch_size"`
	NoBatch             bool   `yaml:"no_batch" mapstructure:"no_batch"`
	SmallBatchThreshold int    `yaml:"small_batch_threshold" mapstructure:"small_batch_threshold"`
}

// PerplexityConfig holds Perplexity API settings (alternative completion backend).
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// NotionConfig holds the optional verdict-publishing target.
type NotionConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	VerdictDB string `yaml:"verdict_db" mapstructure:"verdict_db"`
}

// FeedConfig configures signal ingestion.
type FeedConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	Key            string  `yaml:"key" mapstructure:"key"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSecond  float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	FTPTimeoutSecs int     `yaml:"ftp_timeout_secs" mapstructure:"ftp_timeout_secs"`
}

// AnalysisConfig is the single source of truth for tier boundaries, verdict
// thresholds, dimension weights, and market-sizing defaults. One immutable
// value is loaded at startup and injected into both the relevance classifier
// and the verdict aggregator so the two can never disagree.
type AnalysisConfig struct {
	TierCore     float64 `yaml:"tier_core" mapstructure:"tier_core"`
	TierStrong   float64 `yaml:"tier_strong" mapstructure:"tier_strong"`
	TierRelated  float64 `yaml:"tier_related" mapstructure:"tier_related"`
	TierAdjacent float64 `yaml:"tier_adjacent" mapstructure:"tier_adjacent"`

	VerdictStrong float64 `yaml:"verdict_strong" mapstructure:"verdict_strong"`
	VerdictMixed  float64 `yaml:"verdict_mixed" mapstructure:"verdict_mixed"`
	VerdictWeak   float64 `yaml:"verdict_weak" mapstructure:"verdict_weak"`

	PainWeight        float64 `yaml:"pain_weight" mapstructure:"pain_weight"`
	MarketWeight      float64 `yaml:"market_weight" mapstructure:"market_weight"`
	CompetitionWeight float64 `yaml:"competition_weight" mapstructure:"competition_weight"`
	TimingWeight      float64 `yaml:"timing_weight" mapstructure:"timing_weight"`

	DefaultGeography string  `yaml:"default_geography" mapstructure:"default_geography"`
	DefaultPrice     float64 `yaml:"default_price" mapstructure:"default_price"`
	DefaultMSC       float64 `yaml:"default_msc" mapstructure:"default_msc"`

	LexiconPath       string `yaml:"lexicon_path" mapstructure:"lexicon_path"`
	ScorerConcurrency int    `yaml:"scorer_concurrency" mapstructure:"scorer_concurrency"`
}

// PricingConfig holds per-provider pricing rates.
type PricingConfig struct {
	Anthropic  map[string]ModelPricing `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityPricing       `yaml:"perplexity" mapstructure:"perplexity"`
}

// ModelPricing holds per-model token pricing (USD per million tokens).
type ModelPricing struct {
	Input         float64 `yaml:"input" mapstructure:"input"`
	Output        float64 `yaml:"output" mapstructure:"output"`
	BatchDiscount float64 `yaml:"batch_discount" mapstructure:"batch_discount"`
	CacheWriteMul float64 `yaml:"cache_write_mul" mapstructure:"cache_write_mul"`
	CacheReadMul  float64 `yaml:"cache_read_mul" mapstructure:"cache_read_mul"`
}

// PerplexityPricing holds Perplexity pricing.
type PerplexityPricing struct {
	PerQuery float64 `yaml:"per_query" mapstructure:"per_query"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VALIDATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "validate.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("anthropic.haiku_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.sonnet_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_batch_size", 100)
	v.SetDefault("anthropic.small_batch_threshold", 8)
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("feed.timeout_secs", 30)
	v.SetDefault("feed.rate_per_second", 2.0)
	v.SetDefault("feed.ftp_timeout_secs", 30)
	v.SetDefault("analysis.tier_core", 0.45)
	v.SetDefault("analysis.tier_strong", 0.35)
	v.SetDefault("analysis.tier_related", 0.25)
	v.SetDefault("analysis.tier_adjacent", 0.15)
	v.SetDefault("analysis.verdict_strong", 7.5)
	v.SetDefault("analysis.verdict_mixed", 5.0)
	v.SetDefault("analysis.verdict_weak", 4.0)
	v.SetDefault("analysis.pain_weight", 0.30)
	v.SetDefault("analysis.market_weight", 0.25)
	v.SetDefault("analysis.competition_weight", 0.25)
	v.SetDefault("analysis.timing_weight", 0.20)
	v.SetDefault("analysis.default_geography", "Global")
	v.SetDefault("analysis.default_price", 29.0)
	v.SetDefault("analysis.default_msc", 1000000.0)
	v.SetDefault("analysis.scorer_concurrency", 10)
	v.SetDefault("pricing.perplexity.per_query", 0.005)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
