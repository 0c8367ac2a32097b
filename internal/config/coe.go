package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
	"github.com/fabriziosalmi/repolizer/internal/coeerr"
)

// Configuration is the enumerated batch-tuning configuration: concurrency
// and timing bounds for the Execution Engine and Batch Runner, the
// aggregation flag, and the set of categories to run.
type Configuration struct {
	BatchSize           int      `yaml:"batch_size"`
	MaxConcurrency      int      `yaml:"max_concurrency"`
	CheckTimeoutS       int      `yaml:"check_timeout_s"`
	MemoryLimitMB       int      `yaml:"memory_limit_mb"`
	StrictZeroInclusion bool     `yaml:"strict_zero_inclusion"`
	OutputPath          string   `yaml:"output_path"`
	Categories          []string `yaml:"categories,omitempty"`
}

// DefaultConfiguration returns the documented default tuning values.
func DefaultConfiguration() Configuration {
	return Configuration{
		BatchSize:           5,
		MaxConcurrency:      4,
		CheckTimeoutS:       60,
		MemoryLimitMB:       1000,
		StrictZeroInclusion: false,
		OutputPath:          "results.jsonl",
	}
}

// CheckTimeout returns CheckTimeoutS as a time.Duration.
func (c Configuration) CheckTimeout() time.Duration {
	return time.Duration(c.CheckTimeoutS) * time.Second
}

// LoadConfiguration reads a YAML configuration file on top of
// DefaultConfiguration: a field the file omits keeps its default, while a
// field the file sets, even to zero, keeps the file's value and is then
// validated.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()

	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, coeerr.NewConfigError("load", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Configuration{}, coeerr.NewConfigError("parse", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Configuration{}, coeerr.NewConfigError("validate", path, err)
	}
	return cfg, nil
}

// Validate rejects a Configuration whose tuning fields aren't positive
// integers or whose categories aren't recognized.
func (c Configuration) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("max_concurrency must be positive, got %d", c.MaxConcurrency)
	}
	if c.CheckTimeoutS <= 0 {
		return fmt.Errorf("check_timeout_s must be positive, got %d", c.CheckTimeoutS)
	}
	if c.MemoryLimitMB <= 0 {
		return fmt.Errorf("memory_limit_mb must be positive, got %d", c.MemoryLimitMB)
	}
	for _, cat := range c.Categories {
		if !validCategoryName(cat) {
			return fmt.Errorf("unknown category %q", cat)
		}
	}
	return nil
}

// CategoryWeights is an optional TOML overlay for per-category weights,
// kept separate from the YAML Configuration file since it is expected to
// be edited by hand far more often.
type CategoryWeights struct {
	Weights map[string]float64 `toml:"weights"`
}

// LoadCategoryWeights reads an optional TOML file of category weight
// overrides. A missing file is not an error: it returns an empty
// overlay, since category weights default to 1 (see internal/coeagg).
func LoadCategoryWeights(path string) (CategoryWeights, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CategoryWeights{}, nil
	}

	var weights CategoryWeights
	if _, err := toml.DecodeFile(path, &weights); err != nil {
		return CategoryWeights{}, coeerr.NewConfigError("parse_weights", path, err)
	}
	for cat := range weights.Weights {
		if !validCategoryName(cat) {
			return CategoryWeights{}, coeerr.NewConfigError("parse_weights", path,
				fmt.Errorf("unknown category %q", cat))
		}
	}
	return weights, nil
}

func validCategoryName(cat string) bool {
	return coecore.ValidCategory(cat)
}
