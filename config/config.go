// Package config resolves vekta's runtime configuration from, in
// ascending priority, built-in defaults, a YAML file, and VEKTA_-prefixed
// environment variables (spec §6).
//
// Grounded on original_source/src/config.rs for the resolution order and
// key names; the YAML parsing itself uses gopkg.in/yaml.v3, matching the
// rest of the retrieval pack's preference for a real YAML library over
// hand-rolled parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SearchMethod selects the search strategy the CLI's search command uses;
// there is no per-request override.
type SearchMethod string

const (
	SearchExact SearchMethod = "exact"
	SearchANN   SearchMethod = "ann"
)

// ErrInvalidDimensions is returned when Dimensions is not a positive
// multiple of 8, the kernel's lane width.
var ErrInvalidDimensions = errors.New("config: dimensions must be a positive multiple of 8")

// Config is vekta's fully resolved runtime configuration.
type Config struct {
	Path              string       `yaml:"path"`
	LabelSize         int          `yaml:"label_size"`
	Dimensions        int          `yaml:"dimensions"`
	TopK              int          `yaml:"top_k"`
	SearchMethod      SearchMethod `yaml:"search_method"`
	ANNNumProjections int          `yaml:"ann_num_projections"`
	Workers           int          `yaml:"workers"`
	Verbose           bool         `yaml:"verbose"`
}

// Defaults returns vekta's built-in configuration, per spec §6.
func Defaults() Config {
	return Config{
		Path:              "./vekta.bin",
		LabelSize:         32,
		Dimensions:        384,
		TopK:              10,
		SearchMethod:      SearchExact,
		ANNNumProjections: 20,
		Workers:           0,
		Verbose:           false,
	}
}

// Load resolves configuration in ascending priority: defaults, then the
// YAML file at path (or VEKTA_CONFIG, or "vekta.yaml" if path is empty
// and neither exists), then VEKTA_-prefixed environment variables.
func Load(path string) (Config, error) {
	cfg := Defaults()

	filePath := path
	if filePath == "" {
		filePath = os.Getenv("VEKTA_CONFIG")
	}
	if filePath == "" {
		filePath = "vekta.yaml"
	}
	if data, err := os.ReadFile(filePath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", filePath, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config: reading %s: %w", filePath, err)
	}

	applyEnv(&cfg)

	if cfg.Dimensions <= 0 || cfg.Dimensions%8 != 0 {
		return Config{}, fmt.Errorf("%w: got %d", ErrInvalidDimensions, cfg.Dimensions)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("VEKTA_PATH"); ok {
		cfg.Path = v
	}
	if v, ok := envInt("VEKTA_LABEL_SIZE"); ok {
		cfg.LabelSize = v
	}
	if v, ok := envInt("VEKTA_DIMENSIONS"); ok {
		cfg.Dimensions = v
	}
	if v, ok := envInt("VEKTA_TOP_K"); ok {
		cfg.TopK = v
	}
	if v, ok := os.LookupEnv("VEKTA_SEARCH_METHOD"); ok {
		cfg.SearchMethod = SearchMethod(v)
	}
	if v, ok := envInt("VEKTA_ANN_NUM_PROJECTIONS"); ok {
		cfg.ANNNumProjections = v
	}
	if v, ok := envInt("VEKTA_WORKERS"); ok {
		cfg.Workers = v
	}
	if v, ok := envBool("VEKTA_VERBOSE"); ok {
		cfg.Verbose = v
	}
}

func envInt(name string) (int, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(name string) (bool, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
