// Package config provides configuration loading and management for geoprofile.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"geoprofile/pkg/classify"
	"geoprofile/pkg/decomposition"
	"geoprofile/pkg/errdefs"
	"geoprofile/pkg/logging"
	"geoprofile/pkg/morphology"
	"geoprofile/pkg/raster"
	"geoprofile/pkg/structuring"
)

// Config represents the configuration loaded from YAML
type Config struct {
	// Profile parameters
	Profile struct {
		// Size is the number of scales in the profile
		Size int `yaml:"size"`

		// InitialRadius is the structuring element radius of the first scale, in pixels
		InitialRadius int `yaml:"initialRadius"`

		// Step is the radius increment between consecutive scales, in pixels
		Step int `yaml:"step"`
	} `yaml:"profile"`

	// Structuring element parameters
	StructuringElement struct {
		// Shape is one of ball, box or cross
		Shape string `yaml:"shape"`
	} `yaml:"structuringElement"`

	// Reconstruction parameters
	Reconstruction struct {
		FullyConnected      bool `yaml:"fullyConnected"`
		PreserveIntensities bool `yaml:"preserveIntensities"`
	} `yaml:"reconstruction"`

	// Classification parameters
	Classification struct {
		// Sigma is the tolerance of the decision rule
		Sigma float64 `yaml:"sigma"`

		FlatLabel    int32 `yaml:"flatLabel"`
		ConvexLabel  int32 `yaml:"convexLabel"`
		ConcaveLabel int32 `yaml:"concaveLabel"`
	} `yaml:"classification"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for the per-pixel loops
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Profile.Size = 5
	cfg.Profile.InitialRadius = 1
	cfg.Profile.Step = 1

	cfg.StructuringElement.Shape = structuring.Ball.String()

	cfg.Reconstruction.FullyConnected = false
	cfg.Reconstruction.PreserveIntensities = false

	labels := classify.DefaultLabels()
	cfg.Classification.Sigma = 1.0
	cfg.Classification.FlatLabel = int32(labels.Flat)
	cfg.Classification.ConvexLabel = int32(labels.Convex)
	cfg.Classification.ConcaveLabel = int32(labels.Concave)

	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		logging.Logger().Warn("config file not found, using defaults", "path", configPath)
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// Validate checks every parameter. The returned error names the offending
// YAML key.
func (c *Config) Validate() error {
	if c.Profile.Size < 0 {
		return errdefs.InvalidParameter("profile.size", c.Profile.Size, "must not be negative")
	}
	if c.Profile.InitialRadius <= 0 {
		return errdefs.InvalidParameter("profile.initialRadius", c.Profile.InitialRadius, "must be positive")
	}
	if c.Profile.Step <= 0 {
		return errdefs.InvalidParameter("profile.step", c.Profile.Step, "must be positive")
	}
	if _, err := structuring.ParseShape(c.StructuringElement.Shape); err != nil {
		return errdefs.InvalidParameter("structuringElement.shape", c.StructuringElement.Shape, "must be one of ball, box, cross")
	}
	if !(c.Classification.Sigma >= 0) {
		return errdefs.InvalidParameter("classification.sigma", c.Classification.Sigma, "must be non-negative")
	}
	if c.Processing.NumCores < 0 {
		return errdefs.InvalidParameter("processing.numCores", c.Processing.NumCores, "must not be negative")
	}
	return nil
}

// ScaleParameters returns the radius sequence of the profile.
func (c *Config) ScaleParameters() decomposition.ScaleParameters {
	return decomposition.ScaleParameters{
		InitialRadius: c.Profile.InitialRadius,
		Step:          c.Profile.Step,
		Iterations:    c.Profile.Size,
	}
}

// Flags returns the reconstruction flags.
func (c *Config) Flags() morphology.Flags {
	return morphology.Flags{
		FullyConnected:      c.Reconstruction.FullyConnected,
		PreserveIntensities: c.Reconstruction.PreserveIntensities,
	}
}

// Labels returns the classification label codes.
func (c *Config) Labels() classify.Labels {
	return classify.Labels{
		Flat:    raster.Label(c.Classification.FlatLabel),
		Convex:  raster.Label(c.Classification.ConvexLabel),
		Concave: raster.Label(c.Classification.ConcaveLabel),
	}
}

// Params returns decomposition parameters using the default reconstructor.
func (c *Config) Params() (decomposition.Params, error) {
	shape, err := structuring.ParseShape(c.StructuringElement.Shape)
	if err != nil {
		return decomposition.Params{}, err
	}
	return decomposition.Params{
		Shape:   shape,
		Flags:   c.Flags(),
		Workers: c.Processing.NumCores,
	}, nil
}

// NewMultiScale builds the multi-scale filter described by the config.
func (c *Config) NewMultiScale() (*decomposition.MultiScale, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	params, err := c.Params()
	if err != nil {
		return nil, err
	}
	return decomposition.NewMultiScale(c.ScaleParameters(), params), nil
}

// NewClassifier builds the classifier described by the config.
func (c *Config) NewClassifier() (*classify.Classifier, error) {
	cl, err := classify.New(c.Classification.Sigma, c.Labels())
	if err != nil {
		return nil, err
	}
	cl.Workers = c.Processing.NumCores
	return cl, nil
}
