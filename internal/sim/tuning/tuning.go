package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning carries the host-level movement and server knobs. The physics
// contract constants (gravity, jump velocity, multipliers) are compiled in;
// this file tunes everything around them.
type Tuning struct {
	TickRateHz int `yaml:"tick_rate_hz"`

	MoveSpeed    float64 `yaml:"move_speed"`
	WaterYOffset float64 `yaml:"water_y_offset"`

	WorldSeed      int64 `yaml:"world_seed"`
	WorldBoundaryR int   `yaml:"world_boundary_r"`

	SpawnX float64 `yaml:"spawn_x"`
	SpawnZ float64 `yaml:"spawn_z"`

	MaxSessions int `yaml:"max_sessions"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz:     60,
		MoveSpeed:      4.0,
		WaterYOffset:   0,
		WorldSeed:      1337,
		WorldBoundaryR: 4000,
		SpawnX:         0.5,
		SpawnZ:         0.5,
		MaxSessions:    64,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 || t.TickRateHz > 1000 {
		return fmt.Errorf("tick_rate_hz out of range: %d", t.TickRateHz)
	}
	if t.MoveSpeed <= 0 {
		return fmt.Errorf("move_speed must be positive: %v", t.MoveSpeed)
	}
	if t.MaxSessions <= 0 {
		return fmt.Errorf("max_sessions must be positive: %d", t.MaxSessions)
	}
	return nil
}
