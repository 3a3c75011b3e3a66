// Package config loads railcheck settings from defaults, an optional config
// file and RAILCHECK_* environment variables, in increasing precedence.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/dshills/railcheck/internal/errors"
)

// Config holds every tunable of a validation run.
type Config struct {
	Horizon     Horizon  `mapstructure:"horizon"`
	Output      Output   `mapstructure:"output"`
	Concurrency int      `mapstructure:"concurrency"`
	Checks      []string `mapstructure:"checks"`
}

// Horizon tunes the horizon checker.
type Horizon struct {
	Inclination      float64 `mapstructure:"inclination"`
	TolerancePercent float64 `mapstructure:"tolerance_percent"`
	SkipUncalibrated bool    `mapstructure:"skip_uncalibrated"`
}

// Output selects the export formats written per scene.
type Output struct {
	JSON bool `mapstructure:"json"`
	CSV  bool `mapstructure:"csv"`
}

// DefaultChecks is the checker set run when none is configured.
var DefaultChecks = []string{"sensor_type", "empty_frames", "ego_track", "horizon", "transition", "ontology"}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("horizon.inclination", 0.01) // 1 m grade per 100 m
	v.SetDefault("horizon.tolerance_percent", 0.0)
	v.SetDefault("horizon.skip_uncalibrated", true)
	v.SetDefault("output.json", true)
	v.SetDefault("output.csv", false)
	v.SetDefault("concurrency", 4)
	v.SetDefault("checks", DefaultChecks)
}

// New returns a viper instance with defaults and environment binding set up.
// An empty path skips the config file.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("RAILCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "config: read %s", path), errors.ErrConfiguration)
		}
	}
	return v, nil
}

// Load reads the configuration at path (may be empty) and validates it.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "config: decode"), errors.ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges. Checker names are resolved by the caller.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return errors.Configurationf("concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.Horizon.TolerancePercent < 0 || c.Horizon.TolerancePercent >= 100 {
		return errors.Configurationf("horizon.tolerance_percent must be in [0, 100), got %g", c.Horizon.TolerancePercent)
	}
	if len(c.Checks) == 0 {
		return errors.Configurationf("checks cannot be empty")
	}
	return nil
}
