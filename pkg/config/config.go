// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-arena/pkg/physics"
	"github.com/opd-ai/go-arena/pkg/validation"
)

// Shape kinds accepted in scene files.
const (
	ShapeRect   = "rect"
	ShapeCircle = "circle"
)

// Team names accepted in scene files. An empty team means "none".
const (
	TeamNone   = "none"
	TeamPlayer = "player"
	TeamEnemy  = "enemy"
)

// Projectile target names. A team name is also accepted.
const TargetAll = "all"

// PiercingAll lets a projectile pass through any number of targets.
const PiercingAll = -1

var (
	// ErrInvalidShape is returned for shapes that cannot be built.
	ErrInvalidShape = errors.New("invalid shape")
	// ErrUnknownFormat is returned for scene files that are neither JSON nor YAML.
	ErrUnknownFormat = errors.New("unknown scene file format")
)

// SceneConfig describes a scene: world parameters and the objects in it.
type SceneConfig struct {
	Name         string         `json:"name" yaml:"name"`
	WorldSize    float64        `json:"worldSize" yaml:"worldSize"`
	TickRate     int            `json:"tickRate" yaml:"tickRate"`
	DebugOverlay bool           `json:"debugOverlay" yaml:"debugOverlay"`
	Entities     []EntityConfig `json:"entities" yaml:"entities"`
}

// ShapeConfig describes a collision shape. Rectangles use full width and
// height.
type ShapeConfig struct {
	Kind   string  `json:"kind" yaml:"kind"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// HealthConfig gives an entity hit points.
type HealthConfig struct {
	Max        float64 `json:"max" yaml:"max"`
	Invincible bool    `json:"invincible,omitempty" yaml:"invincible,omitempty"`
}

// ProjectileConfig turns an entity into a projectile. Piercing is the
// number of extra targets it may pass through; PiercingAll means unlimited.
// Range is the distance it may travel before expiring; zero means unlimited.
// Knockback is the speed added to a victim along the projectile's heading.
type ProjectileConfig struct {
	Damage    float64 `json:"damage" yaml:"damage"`
	Target    string  `json:"target,omitempty" yaml:"target,omitempty"`
	Piercing  int     `json:"piercing,omitempty" yaml:"piercing,omitempty"`
	Range     float64 `json:"range,omitempty" yaml:"range,omitempty"`
	Knockback float64 `json:"knockback,omitempty" yaml:"knockback,omitempty"`
}

// EntityConfig describes one object in a scene.
type EntityConfig struct {
	Name          string            `json:"name" yaml:"name"`
	X             float64           `json:"x" yaml:"x"`
	Y             float64           `json:"y" yaml:"y"`
	Shape         ShapeConfig       `json:"shape" yaml:"shape"`
	Team          string            `json:"team,omitempty" yaml:"team,omitempty"`
	VelocityX     float64           `json:"velocityX,omitempty" yaml:"velocityX,omitempty"`
	VelocityY     float64           `json:"velocityY,omitempty" yaml:"velocityY,omitempty"`
	Script        string            `json:"script,omitempty" yaml:"script,omitempty"`
	FollowCursor  bool              `json:"followCursor,omitempty" yaml:"followCursor,omitempty"`
	ContactDamage float64           `json:"contactDamage,omitempty" yaml:"contactDamage,omitempty"`
	Health        *HealthConfig     `json:"health,omitempty" yaml:"health,omitempty"`
	Projectile    *ProjectileConfig `json:"projectile,omitempty" yaml:"projectile,omitempty"`
}

// Position returns the entity's spawn position.
func (e EntityConfig) Position() physics.Vector2D {
	return physics.Vec(e.X, e.Y)
}

// Velocity returns the entity's initial velocity.
func (e EntityConfig) Velocity() physics.Vector2D {
	return physics.Vec(e.VelocityX, e.VelocityY)
}

// Build converts the description into a physics shape.
func (s ShapeConfig) Build() (physics.Shape, error) {
	switch strings.ToLower(s.Kind) {
	case ShapeRect:
		if err := finiteSize("width", s.Width); err != nil {
			return physics.Shape{}, err
		}
		if err := finiteSize("height", s.Height); err != nil {
			return physics.Shape{}, err
		}
		if s.Width <= 0 || s.Height <= 0 {
			return physics.Shape{}, fmt.Errorf("%w: rect %vx%v must have positive size", ErrInvalidShape, s.Width, s.Height)
		}
		return physics.NewRectFromSize(physics.Vec(s.Width, s.Height)), nil
	case ShapeCircle:
		if err := finiteSize("radius", s.Radius); err != nil {
			return physics.Shape{}, err
		}
		if s.Radius <= 0 {
			return physics.Shape{}, fmt.Errorf("%w: circle radius %v must be positive", ErrInvalidShape, s.Radius)
		}
		return physics.NewCircle(s.Radius), nil
	default:
		return physics.Shape{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidShape, s.Kind)
	}
}

func finiteSize(name string, v float64) error {
	if err := validation.ValidateFinite(name, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	return nil
}

// Format is a scene file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// LoadConfig loads a scene from a JSON or YAML file.
func LoadConfig(path string) (*SceneConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

// LoadScene loads path with environment overrides applied. A missing file
// yields DefaultConfig and found=false.
func LoadScene(path string) (config *SceneConfig, found bool, err error) {
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		config = DefaultConfig()
	} else {
		if config, err = LoadConfig(path); err != nil {
			return nil, false, err
		}
		found = true
	}

	if err := ApplyEnvironmentOverrides(config); err != nil {
		return nil, found, err
	}
	return config, found, nil
}

// Parse decodes a scene. Missing world parameters take default values.
func Parse(data []byte, format Format) (*SceneConfig, error) {
	var config SceneConfig
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	config.fillDefaults()
	return &config, nil
}

func (c *SceneConfig) fillDefaults() {
	if c.WorldSize == 0 {
		c.WorldSize = DefaultWorldSize
	}
	if c.TickRate == 0 {
		c.TickRate = DefaultTickRate
	}
}

// SaveConfig saves a scene, encoding it by the file extension.
func SaveConfig(config *SceneConfig, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Default world parameters.
const (
	DefaultWorldSize = 1000.0
	DefaultTickRate  = 60
)

// DefaultConfig returns the collider debug scene: a cursor-following
// circle at the origin, a large circle to its right and a square to its
// left, plus a small arena with a patrolling enemy, a wall and a projectile.
func DefaultConfig() *SceneConfig {
	return &SceneConfig{
		Name:         "debug",
		WorldSize:    DefaultWorldSize,
		TickRate:     DefaultTickRate,
		DebugOverlay: true,
		Entities: []EntityConfig{
			{
				Name:         "cursor",
				Shape:        ShapeConfig{Kind: ShapeCircle, Radius: 20},
				Team:         TeamPlayer,
				FollowCursor: true,
				Health:       &HealthConfig{Max: 100, Invincible: true},
			},
			{
				Name:  "big-circle",
				X:     100,
				Shape: ShapeConfig{Kind: ShapeCircle, Radius: 50},
			},
			{
				Name:  "box",
				X:     -100,
				Shape: ShapeConfig{Kind: ShapeRect, Width: 50, Height: 50},
			},
			{
				Name:          "patroller",
				Y:             250,
				Shape:         ShapeConfig{Kind: ShapeCircle, Radius: 15},
				Team:          TeamEnemy,
				Script:        "x = 200 * math.sin(t)",
				ContactDamage: 10,
				Health:        &HealthConfig{Max: 30},
			},
			{
				Name:  "wall",
				X:     300,
				Y:     -250,
				Shape: ShapeConfig{Kind: ShapeRect, Width: 20, Height: 200},
			},
			{
				Name:       "bolt",
				X:          -300,
				Y:          250,
				Shape:      ShapeConfig{Kind: ShapeCircle, Radius: 4},
				Team:       TeamPlayer,
				VelocityX:  120,
				Projectile: &ProjectileConfig{Damage: 15, Target: TeamEnemy, Piercing: 1, Range: 900, Knockback: 60},
			},
		},
	}
}
