package protocol

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete, immutable configuration for one compilation. It
// is passed to the compiler at construction rather than held as package
// state, so compilations with different configurations can run side by
// side without interference.
type Config struct {
	// Capacity is the maximum rows per segment, i.e. the number of wells
	// the device can serve in one loading cycle.
	Capacity int `yaml:"capacity"`
	// VolumeThreshold splits instrument routing: volumes at or below it go
	// to the low-volume pipette. In the table's volume unit (µL).
	VolumeThreshold float64 `yaml:"volume_threshold"`
	// GridRows and GridCols describe the destination plate grid used for
	// well synthesis (8x12 for a 96-well plate).
	GridRows int `yaml:"grid_rows"`
	GridCols int `yaml:"grid_cols"`
	// DiluentToken identifies the remaining-diluent column by
	// case-insensitive substring match.
	DiluentToken string `yaml:"diluent_token"`
	// PositionTokens identify an explicit well-position column.
	PositionTokens []string `yaml:"position_tokens"`
	// ReagentOrder is the fixed priority order in which reagents are
	// grouped and emitted.
	ReagentOrder []string `yaml:"reagent_order"`
	// Reagents maps reagent identifier to its static definition.
	Reagents map[string]Reagent `yaml:"reagents"`
	// Metadata labels the generated protocol files.
	Metadata Metadata `yaml:"metadata"`
}

// Reagent is the static definition of one liquid in the closed reagent set.
type Reagent struct {
	// Name is the display name, e.g. "2.4M Glycine".
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Color is the display color in the generated protocol.
	Color string `yaml:"color"`
	// TubePosition is the fixed tube-rack slot holding the reagent.
	TubePosition string `yaml:"tube_position"`
	// Tokens is the priority-ordered column match token list.
	Tokens []string `yaml:"tokens"`
}

// Metadata labels the generated protocols.
type Metadata struct {
	ProtocolName string `yaml:"protocol_name"`
	Author       string `yaml:"author"`
	Description  string `yaml:"description"`
	APILevel     string `yaml:"api_level"`
}

// DefaultConfig returns the stock OT-2 cloud-point configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:        28,
		VolumeThreshold: 20,
		GridRows:        8,
		GridCols:        12,
		DiluentToken:    "water",
		PositionTokens:  []string{"well", "position", "pos"},
		ReagentOrder:    []string{"tris", "nacl", "glycine", "water"},
		Reagents: map[string]Reagent{
			"glycine": {
				Name:         "2.4M Glycine",
				Description:  "in water",
				Color:        "#b925ff",
				TubePosition: "A1",
				Tokens:       []string{"gly", "2.4m", "glycine"},
			},
			"nacl": {
				Name:         "5M NaCl",
				Description:  "in water",
				Color:        "#ffd600",
				TubePosition: "A2",
				Tokens:       []string{"nacl", "5m", "salt"},
			},
			"tris": {
				Name:         "500mM Tris buffer",
				Description:  "in water",
				Color:        "#7eff42ff",
				TubePosition: "B1",
				Tokens:       []string{"tris", "buffer", "0.5m"},
			},
			"water": {
				Name:         "water",
				Description:  "",
				Color:        "#50d5ffff",
				TubePosition: "B2",
				Tokens:       []string{"water", "h2o"},
			},
		},
		Metadata: Metadata{
			ProtocolName: "Auto-Generated Cloud Point Protocol",
			Author:       "otplan",
			Description:  "Auto-generated dilution series for CP test from CSV data",
			APILevel:     "2.24",
		},
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults, so a
// file only needs to state what it overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.VolumeThreshold <= 0 {
		return fmt.Errorf("%w: volume threshold must be positive, got %g", ErrInvalidConfig, c.VolumeThreshold)
	}
	if c.GridRows <= 0 || c.GridCols <= 0 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidConfig, c.GridRows, c.GridCols)
	}
	for _, name := range c.ReagentOrder {
		if _, ok := c.Reagents[name]; !ok {
			return fmt.Errorf("%w: reagent %q listed in order but not defined", ErrInvalidConfig, name)
		}
	}
	return nil
}

// reagentTokens flattens the per-reagent match token lists for the
// classifier.
func (c Config) reagentTokens() map[string][]string {
	tokens := make(map[string][]string, len(c.Reagents))
	for name, reagent := range c.Reagents {
		tokens[name] = reagent.Tokens
	}
	return tokens
}

// tubePositions flattens the reagent to source-tube table for the grouper.
func (c Config) tubePositions() map[string]string {
	tubes := make(map[string]string, len(c.Reagents))
	for name, reagent := range c.Reagents {
		tubes[name] = reagent.TubePosition
	}
	return tubes
}
