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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	PSA      PSAConfig      `yaml:"psa" mapstructure:"psa"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the analysis-run persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnalysisConfig holds run defaults overridable per command.
type AnalysisConfig struct {
	Country            string `yaml:"country" mapstructure:"country"`
	Scenario           string `yaml:"scenario" mapstructure:"scenario"`
	HorizonYears       int    `yaml:"horizon_years" mapstructure:"horizon_years"`
	IncludeOffsets     bool   `yaml:"include_offsets" mapstructure:"include_offsets"`
	IncludePersistence bool   `yaml:"include_persistence" mapstructure:"include_persistence"`
	IncludeEvents      bool   `yaml:"include_events" mapstructure:"include_events"`
}

// PSAConfig configures probabilistic sensitivity analysis.
type PSAConfig struct {
	Iterations int     `yaml:"iterations" mapstructure:"iterations"`
	Seed       int64   `yaml:"seed" mapstructure:"seed"`
	Confidence float64 `yaml:"confidence" mapstructure:"confidence"`
	Workers    int     `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP API server.
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
	v.SetEnvPrefix("BIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "bim.db")
	v.SetDefault("analysis.country", "US")
	v.SetDefault("analysis.scenario", "moderate")
	v.SetDefault("analysis.horizon_years", 5)
	v.SetDefault("analysis.include_offsets", true)
	v.SetDefault("analysis.include_persistence", true)
	v.SetDefault("analysis.include_events", true)
	v.SetDefault("psa.iterations", 1000)
	v.SetDefault("psa.seed", 42)
	v.SetDefault("psa.confidence", 0.95)
	v.SetDefault("psa.workers", 4)
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
