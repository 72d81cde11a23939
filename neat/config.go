package neat

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config error")

// Config stores the configuration parameters of a run.
type Config struct {
	Neat   NeatConfig   `yaml:"neat"`
	Genome GenomeConfig `yaml:"genome"`
}

// NeatConfig holds population-level parameters.
type NeatConfig struct {
	PopSize     int   `ini:"pop_size" yaml:"pop_size"`
	Seed        int64 `ini:"seed" yaml:"seed"`               // 0 seeds from the clock
	Generations int   `ini:"generations" yaml:"generations"` // used by the CLI
	Workers     int   `ini:"workers" yaml:"workers"`         // 0 means GOMAXPROCS
}

// GenomeConfig holds parameters for the initial topology, weight sampling and
// mutation probabilities of genomes.
type GenomeConfig struct {
	NumSensors       int     `ini:"num_sensors" yaml:"num_sensors"`
	NumOutputs       int     `ini:"num_outputs" yaml:"num_outputs"`
	InitialConnected bool    `ini:"initial_connected" yaml:"initial_connected"` // fully wire sensors to outputs
	DefaultWeight    float64 `ini:"default_weight" yaml:"default_weight"`
	WeightIsRandom   bool    `ini:"weight_is_random" yaml:"weight_is_random"`
	WeightDeviation  float64 `ini:"weight_deviation" yaml:"weight_deviation"` // half-width of the sampling interval

	CreateConnectionProb float64 `ini:"mutate_create_connection" yaml:"mutate_create_connection"`
	CreateNeuronProb     float64 `ini:"mutate_create_neuron" yaml:"mutate_create_neuron"`
	SetWeightProb        float64 `ini:"mutate_set_weight" yaml:"mutate_set_weight"`
	UpdateWeightProb     float64 `ini:"mutate_update_weight" yaml:"mutate_update_weight"`
	ToggleConnectionProb float64 `ini:"mutate_toggle_connection" yaml:"mutate_toggle_connection"`

	// IndependentDraws gives every operator its own random draw in Mutate.
	// When false a single draw is compared against all five probabilities.
	IndependentDraws bool `ini:"independent_draws" yaml:"independent_draws"`
}

// DefaultGenomeConfig returns the stock genome parameters for the given
// number of sensors and outputs.
func DefaultGenomeConfig(numSensors, numOutputs int) GenomeConfig {
	return GenomeConfig{
		NumSensors:           numSensors,
		NumOutputs:           numOutputs,
		InitialConnected:     false,
		DefaultWeight:        0.0,
		WeightIsRandom:       true,
		WeightDeviation:      3.0,
		CreateConnectionProb: 0.05,
		CreateNeuronProb:     0.03,
		SetWeightProb:        0.15,
		UpdateWeightProb:     0.2,
		ToggleConnectionProb: 0.1,
	}
}

// DefaultConfig returns a complete configuration with stock values.
func DefaultConfig(numSensors, numOutputs int) *Config {
	return &Config{
		Neat: NeatConfig{
			PopSize:     50,
			Generations: 100,
		},
		Genome: DefaultGenomeConfig(numSensors, numOutputs),
	}
}

// NumNeurons returns the number of neurons every new genome starts with.
func (gc *GenomeConfig) NumNeurons() uint32 {
	sensors, outputs := gc.neuronCounts()
	return sensors + outputs
}

// neuronCounts returns the sensor and output counts, with negative values
// read as zero.
func (gc *GenomeConfig) neuronCounts() (uint32, uint32) {
	return uint32(max(gc.NumSensors, 0)), uint32(max(gc.NumOutputs, 0))
}

// RandomWeight samples uniformly from
// [DefaultWeight-WeightDeviation, DefaultWeight+WeightDeviation).
func (gc *GenomeConfig) RandomWeight(rng *rand.Rand) float64 {
	return gc.DefaultWeight + rng.Float64()*2.0*gc.WeightDeviation - gc.WeightDeviation
}

// Weight returns a weight according to the configured policy.
func (gc *GenomeConfig) Weight(rng *rand.Rand) float64 {
	if gc.WeightIsRandom {
		return gc.RandomWeight(rng)
	}
	return gc.DefaultWeight
}

// Validate checks the genome parameters.
func (gc *GenomeConfig) Validate() error {
	if gc.NumSensors < 0 {
		return fmt.Errorf("%w: num_sensors cannot be negative", ErrInvalidConfig)
	}
	if gc.NumOutputs < 0 {
		return fmt.Errorf("%w: num_outputs cannot be negative", ErrInvalidConfig)
	}
	if gc.WeightDeviation < 0 {
		return fmt.Errorf("%w: weight_deviation cannot be negative", ErrInvalidConfig)
	}
	probs := []struct {
		name  string
		value float64
	}{
		{"mutate_create_connection", gc.CreateConnectionProb},
		{"mutate_create_neuron", gc.CreateNeuronProb},
		{"mutate_set_weight", gc.SetWeightProb},
		{"mutate_update_weight", gc.UpdateWeightProb},
		{"mutate_toggle_connection", gc.ToggleConnectionProb},
	}
	for _, p := range probs {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1", ErrInvalidConfig, p.name)
		}
	}
	return nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if c.Neat.PopSize <= 0 {
		return fmt.Errorf("%w: pop_size must be positive", ErrInvalidConfig)
	}
	if c.Neat.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative", ErrInvalidConfig)
	}
	if c.Neat.Generations < 0 {
		return fmt.Errorf("%w: generations cannot be negative", ErrInvalidConfig)
	}
	return c.Genome.Validate()
}

// LoadConfig loads configuration parameters from an INI file, or from YAML
// when the file ends in .yaml or .yml. Keys that are absent keep their stock
// values.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig(0, 0)

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
		}
	default:
		cfg, err := ini.Load(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
		}
		if err := cfg.Section("NEAT").MapTo(&config.Neat); err != nil {
			return nil, fmt.Errorf("failed to map [NEAT] section: %w", err)
		}
		if err := cfg.Section("DefaultGenome").MapTo(&config.Genome); err != nil {
			return nil, fmt.Errorf("failed to map [DefaultGenome] section: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// WriteConfig writes config to w in INI form.
func WriteConfig(w io.Writer, config *Config) error {
	cfg := ini.Empty()
	if err := cfg.Section("NEAT").ReflectFrom(&config.Neat); err != nil {
		return fmt.Errorf("failed to reflect [NEAT] section: %w", err)
	}
	if err := cfg.Section("DefaultGenome").ReflectFrom(&config.Genome); err != nil {
		return fmt.Errorf("failed to reflect [DefaultGenome] section: %w", err)
	}
	if _, err := cfg.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
