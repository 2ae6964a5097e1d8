package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Service Service `yaml:"service" mapstructure:"service"`
	HTTP    HTTP    `yaml:"http" mapstructure:"http"`
	Crawl   Crawl   `yaml:"crawl" mapstructure:"crawl"`
	Store   Store   `yaml:"store" mapstructure:"store"`
	Server  Server  `yaml:"server" mapstructure:"server"`
	Log     Log     `yaml:"log" mapstructure:"log"`
}

// Service holds the autocomplete endpoint URLs.
type Service struct {
	StreetURL string `yaml:"street_url" mapstructure:"street_url"`
	NumberURL string `yaml:"number_url" mapstructure:"number_url"`
}

// HTTP configures the transport.
type HTTP struct {
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// Crawl configures the crawl driver.
type Crawl struct {
	Workers   int `yaml:"workers" mapstructure:"workers"`
	SaveEvery int `yaml:"save_every" mapstructure:"save_every"`
}

// Store configures the snapshot backend.
type Store struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DataDir     string `yaml:"data_dir" mapstructure:"data_dir"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// Server configures the read-only JSON API.
type Server struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// Log configures logging.
type Log struct {
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
	v.SetEnvPrefix("STREETCRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("service.street_url", "https://service.stuttgart.de/lhs-services/aws/strassennamen")
	v.SetDefault("service.number_url", "https://service.stuttgart.de/lhs-services/aws/hausnummern")
	v.SetDefault("http.user_agent", "streetcrawl/1.0")
	v.SetDefault("http.timeout_secs", 30)
	v.SetDefault("http.requests_per_second", 5.0)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("crawl.workers", 1)
	v.SetDefault("crawl.save_every", 50)
	v.SetDefault("store.driver", "json")
	v.SetDefault("store.data_dir", ".")
	v.SetDefault("store.sqlite_path", "streetcrawl.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Dump renders the effective configuration as YAML.
func (c *Config) Dump() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", eris.Wrap(err, "config: marshal")
	}
	return string(out), nil
}

// Validate checks the fields a command depends on before it runs.
func (c *Config) Validate() error {
	if c.Service.StreetURL == "" {
		return eris.New("config: service.street_url is required")
	}
	if c.Service.NumberURL == "" {
		return eris.New("config: service.number_url is required")
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		return eris.New("config: store.database_url is required for the postgres driver")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg Log) error {
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
