package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/getsentry/ftracer/internal/render"
)

type Config struct {
	Environment string `yaml:"environment" toml:"environment" json:"environment" env:"SENTRY_ENVIRONMENT" env-default:"development"`
	SentryDSN   string `yaml:"sentry_dsn" toml:"sentry_dsn" json:"sentry_dsn" env:"SENTRY_DSN"`

	LogLevel  string `yaml:"log_level" toml:"log_level" json:"log_level" env:"FTRACER_LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" toml:"log_format" json:"log_format" env:"FTRACER_LOG_FORMAT" env-default:"console" env-description:"console or json"`

	ColumnWidth    int `yaml:"column_width" toml:"column_width" json:"column_width" env:"FTRACER_COLUMN_WIDTH" env-default:"25"`
	TimestampWidth int `yaml:"timestamp_width" toml:"timestamp_width" json:"timestamp_width" env:"FTRACER_TIMESTAMP_WIDTH" env-default:"8"`
	WideThreshold  int `yaml:"wide_threshold" toml:"wide_threshold" json:"wide_threshold" env:"FTRACER_WIDE_THRESHOLD" env-default:"8"`
	TagWidth       int `yaml:"tag_width" toml:"tag_width" json:"tag_width" env:"FTRACER_TAG_WIDTH" env-default:"30"`
}

// Load reads the configuration file at path, if any, and then the
// environment, which takes precedence.
func Load(path string) (Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	widths := []struct {
		name  string
		value int
	}{
		{"column_width", c.ColumnWidth},
		{"timestamp_width", c.TimestampWidth},
		{"wide_threshold", c.WideThreshold},
		{"tag_width", c.TagWidth},
	}
	for _, w := range widths {
		if w.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", w.name, w.value)
		}
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

func (c Config) Layout() render.Layout {
	return render.Layout{
		ColumnWidth:    c.ColumnWidth,
		TimestampWidth: c.TimestampWidth,
		WideThreshold:  c.WideThreshold,
		TagWidth:       c.TagWidth,
	}
}
