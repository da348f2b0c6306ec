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
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Meili  MeiliConfig  `yaml:"meili" mapstructure:"meili"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Sync   SyncConfig   `yaml:"sync" mapstructure:"sync"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the Postgres backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// MeiliConfig holds Meilisearch connection settings.
type MeiliConfig struct {
	Host           string  `yaml:"host" mapstructure:"host"`
	APIKey         string  `yaml:"api_key" mapstructure:"api_key"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// IngestConfig configures the lead ingestion pipeline.
type IngestConfig struct {
	Dir                string  `yaml:"dir" mapstructure:"dir"`
	CompanySlug        string  `yaml:"company_slug" mapstructure:"company_slug"`
	ProximityTolerance float64 `yaml:"proximity_tolerance" mapstructure:"proximity_tolerance"`
	DefaultAccessState string  `yaml:"default_access_state" mapstructure:"default_access_state"`
	ProviderAliasFile  string  `yaml:"provider_alias_file" mapstructure:"provider_alias_file"`
}

// SyncConfig configures search index synchronization.
type SyncConfig struct {
	BatchSize      int `yaml:"batch_size" mapstructure:"batch_size"`
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// ServerConfig configures the admin HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("TOWERSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("meili.host", "http://localhost:7700")
	v.SetDefault("meili.timeout_secs", 30)
	v.SetDefault("meili.requests_per_sec", 20)
	v.SetDefault("ingest.dir", ".")
	v.SetDefault("ingest.company_slug", "test-company")
	v.SetDefault("ingest.proximity_tolerance", 0.0001)
	v.SetDefault("ingest.default_access_state", "SAMPLE")
	v.SetDefault("sync.batch_size", 1000)
	v.SetDefault("sync.max_concurrency", 4)

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
