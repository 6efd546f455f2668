package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sword-ecs/sword/internal/core/world"
)

// Config drives the demo simulation loop.
type Config struct {
	// TickRate is the target update frequency in ticks per second.
	TickRate float64 `yaml:"tick_rate"`
	// SnapshotPath, when set, receives a YAML snapshot on shutdown.
	SnapshotPath string `yaml:"snapshot_path"`
	// Archetypes registered before the loop starts.
	Archetypes map[string]world.Components `yaml:"archetypes"`
	// Spawn lists the entities instantiated at startup.
	Spawn []SpawnSpec `yaml:"spawn"`
}

// SpawnSpec instantiates Count entities of a named archetype with optional
// per-spawn overrides.
type SpawnSpec struct {
	Archetype string           `yaml:"archetype"`
	Count     int              `yaml:"count"`
	Overrides world.Components `yaml:"overrides,omitempty"`
}

// DefaultConfig is used when no config file is supplied.
func DefaultConfig() Config {
	return Config{
		TickRate: 20,
		Archetypes: map[string]world.Components{
			"creature": {
				"health": 100.0,
				"decay":  4.0,
				"alive":  true,
			},
			"relic": {
				"inert": true,
			},
		},
		Spawn: []SpawnSpec{
			{Archetype: "creature", Count: 8},
			{Archetype: "creature", Count: 2, Overrides: world.Components{"health": 10.0}},
			{Archetype: "relic", Count: 3},
		},
	}
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.TickRate <= 0 {
		return Config{}, fmt.Errorf("invalid config: tick_rate must be positive, got %v", cfg.TickRate)
	}
	return cfg, nil
}
