// Package config holds the run configuration: reference defaults, an optional
// YAML file overlay and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/MJE43/antwalk/internal/engine"
	"github.com/MJE43/antwalk/internal/logging"
	"github.com/MJE43/antwalk/internal/region"
	"github.com/MJE43/antwalk/internal/sim"
)

// DefaultClientSeed is used when no client seed is configured.
const DefaultClientSeed = "antwalk"

// Config is the complete set of knobs for one batch.
type Config struct {
	Region         string        `yaml:"region"`
	StepSize       float64       `yaml:"step_size"`
	SecondsPerStep float64       `yaml:"seconds_per_step"`
	Precision      float64       `yaml:"precision"`
	Epochs         int           `yaml:"epochs"`
	MaxSteps       int           `yaml:"max_steps"`
	Workers        int           `yaml:"workers"`
	Timeout        time.Duration `yaml:"timeout"`
	Seed           engine.Seeds  `yaml:"seed"`
	Log            LogConfig     `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the reference experiment.
func Default() Config {
	p := sim.DefaultParams()
	return Config{
		Region:         region.Ellipse,
		StepSize:       p.StepSize,
		SecondsPerStep: p.SecondsPerStep,
		Precision:      p.Precision,
		Epochs:         10_000,
		MaxSteps:       p.MaxSteps,
		Seed:           engine.Seeds{Client: DefaultClientSeed},
		Log:            LogConfig{Level: "info", Format: "text"},
	}
}

// Load overlays the YAML file at path onto the defaults. Keys absent from
// the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error

	if _, err := region.Get(c.Region); err != nil {
		errs = append(errs, err)
	}
	if err := c.Params().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Epochs <= 0 {
		errs = append(errs, fmt.Errorf("epochs must be positive, got %d", c.Epochs))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Params extracts the per-trial constants.
func (c Config) Params() sim.Params {
	return sim.Params{
		StepSize:       c.StepSize,
		SecondsPerStep: c.SecondsPerStep,
		Precision:      c.Precision,
		MaxSteps:       c.MaxSteps,
	}
}

// FillSeed generates a random server seed when none is configured and
// reports whether it did. The generated seed must be logged for the run to
// be reproducible.
func (c *Config) FillSeed() bool {
	if c.Seed.Server != "" {
		return false
	}
	c.Seed.Server = uuid.NewString()
	return true
}

// Request converts the configuration into a batch request.
func (c Config) Request() sim.Request {
	timeoutMs := int(c.Timeout / time.Millisecond)
	if c.Timeout > 0 && timeoutMs == 0 {
		timeoutMs = 1
	}

	return sim.Request{
		Region:    c.Region,
		Seeds:     c.Seed,
		Epochs:    c.Epochs,
		Params:    c.Params(),
		Workers:   c.Workers,
		TimeoutMs: timeoutMs,
	}
}
