// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/forecast-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Probabilities ProbabilityConfig `yaml:"probabilities" mapstructure:"probabilities"`
	UseHistorical bool              `yaml:"use_historical" mapstructure:"use_historical"`
	Quota         QuotaConfig       `yaml:"quota" mapstructure:"quota"`
	Store         StoreConfig       `yaml:"store" mapstructure:"store"`
	Server        ServerConfig      `yaml:"server" mapstructure:"server"`
	Log           LogConfig         `yaml:"log" mapstructure:"log"`
}

// ProbabilityConfig holds per-stage win probabilities as percentages (0-100),
// matching how reps talk about stage odds. StageProbabilities normalizes to
// the [0,1] range the analytics core expects.
type ProbabilityConfig struct {
	Discovery   float64 `yaml:"discovery" mapstructure:"discovery"`
	Demo        float64 `yaml:"demo" mapstructure:"demo"`
	Proposal    float64 `yaml:"proposal" mapstructure:"proposal"`
	Negotiation float64 `yaml:"negotiation" mapstructure:"negotiation"`
}

// StageProbabilities converts the percentage fields to a probability map.
func (p ProbabilityConfig) StageProbabilities() model.StageProbabilities {
	return model.StageProbabilities{
		model.StageDiscovery:   p.Discovery / 100,
		model.StageDemo:        p.Demo / 100,
		model.StageProposal:    p.Proposal / 100,
		model.StageNegotiation: p.Negotiation / 100,
	}
}

// QuotaConfig holds revenue targets used by trend analysis.
type QuotaConfig struct {
	Monthly  float64 `yaml:"monthly" mapstructure:"monthly"`
	PlanFile string  `yaml:"plan_file" mapstructure:"plan_file"`
}

// Quarterly returns the quarterly quota derived from the monthly target.
func (q QuotaConfig) Quarterly() float64 { return q.Monthly * 3 }

// StoreConfig configures the snapshot database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the report server.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
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
	v.SetEnvPrefix("FORECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("probabilities.discovery", 10.0)
	v.SetDefault("probabilities.demo", 30.0)
	v.SetDefault("probabilities.proposal", 50.0)
	v.SetDefault("probabilities.negotiation", 70.0)
	v.SetDefault("use_historical", false)
	v.SetDefault("quota.monthly", 2_000_000)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "forecast.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 20)
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks probability bounds and quota sanity.
func (c *Config) Validate() error {
	probs := map[string]float64{
		"discovery":   c.Probabilities.Discovery,
		"demo":        c.Probabilities.Demo,
		"proposal":    c.Probabilities.Proposal,
		"negotiation": c.Probabilities.Negotiation,
	}
	for name, p := range probs {
		if p < 0 || p > 100 {
			return eris.Errorf("config: probabilities.%s must be 0-100 (got %g)", name, p)
		}
	}
	if c.Quota.Monthly < 0 {
		return eris.Errorf("config: quota.monthly must be non-negative (got %g)", c.Quota.Monthly)
	}
	return nil
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
