package driver

import (
	"fmt"
	"io"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Config holds the host settings. Every field can be set from the
// environment with the ENGINE262_ prefix, e.g. ENGINE262_LOG_LEVEL=debug.
type Config struct {
	LogLevel     string `envconfig:"LOG_LEVEL" default:"warn"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"text"` // text or json
	MaxCallDepth int    `envconfig:"MAX_CALL_DEPTH" default:"512"`
	NoColor      bool   `envconfig:"NO_COLOR"`
	FixtureGlob  string `envconfig:"FIXTURES" default:"testdata/fixtures/*.yaml"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("engine262", &cfg); err != nil {
		return Config{}, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// NewLogger builds a logger writing to w at the configured level and format.
func (c Config) NewLogger(w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)
	switch c.LogFormat {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: c.NoColor, DisableTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	return logger, nil
}
