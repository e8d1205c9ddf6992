package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-arena/pkg/physics"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if config.WorldSize != DefaultWorldSize {
		t.Errorf("Expected WorldSize %v, got %f", DefaultWorldSize, config.WorldSize)
	}

	if config.TickRate != 60 {
		t.Errorf("Expected TickRate 60, got %d", config.TickRate)
	}

	if !config.DebugOverlay {
		t.Error("Expected the debug overlay to be on")
	}

	// The collider debug scene comes first.
	debugScene := []struct {
		name     string
		position physics.Vector2D
		shape    physics.Shape
	}{
		{"cursor", physics.Vec(0, 0), physics.NewCircle(20)},
		{"big-circle", physics.Vec(100, 0), physics.NewCircle(50)},
		{"box", physics.Vec(-100, 0), physics.NewRect(physics.Vec(25, 25))},
	}

	require.GreaterOrEqual(t, len(config.Entities), len(debugScene))
	for i, want := range debugScene {
		e := config.Entities[i]
		if e.Name != want.name {
			t.Errorf("entity %d: expected name %q, got %q", i, want.name, e.Name)
		}
		if e.Position() != want.position {
			t.Errorf("%s: expected position %v, got %v", want.name, want.position, e.Position())
		}
		shape, err := e.Shape.Build()
		if err != nil {
			t.Fatalf("%s: %v", want.name, err)
		}
		if shape != want.shape {
			t.Errorf("%s: expected shape %v, got %v", want.name, want.shape, shape)
		}
	}

	if !config.Entities[0].FollowCursor {
		t.Error("Expected the cursor entity to follow the cursor")
	}

	if err := Validate(config); err != nil {
		t.Errorf("DefaultConfig should validate, got %v", err)
	}
}

func TestShapeConfig_Build(t *testing.T) {
	tests := []struct {
		name    string
		shape   ShapeConfig
		want    physics.Shape
		wantErr bool
	}{
		{"rect", ShapeConfig{Kind: "rect", Width: 40, Height: 20}, physics.NewRect(physics.Vec(20, 10)), false},
		{"rect uppercase kind", ShapeConfig{Kind: "RECT", Width: 2, Height: 2}, physics.NewRect(physics.Vec(1, 1)), false},
		{"circle", ShapeConfig{Kind: "circle", Radius: 7}, physics.NewCircle(7), false},
		{"rect zero width", ShapeConfig{Kind: "rect", Height: 5}, physics.Shape{}, true},
		{"circle negative radius", ShapeConfig{Kind: "circle", Radius: -1}, physics.Shape{}, true},
		{"unknown kind", ShapeConfig{Kind: "triangle"}, physics.Shape{}, true},
		{"circle infinite radius", ShapeConfig{Kind: "circle", Radius: math.Inf(1)}, physics.Shape{}, true},
		{"circle NaN radius", ShapeConfig{Kind: "circle", Radius: math.NaN()}, physics.Shape{}, true},
		{"rect infinite height", ShapeConfig{Kind: "rect", Width: 10, Height: math.Inf(1)}, physics.Shape{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.shape.Build()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidShape))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scene"+ext)
			original := DefaultConfig()

			require.NoError(t, SaveConfig(original, path))

			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, original, loaded)
		})
	}
}

func TestLoadConfig_YAMLDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.yaml")
	doc := `
name: arena
debugOverlay: true
entities:
  - name: hero
    x: 10
    y: -5
    team: player
    shape: {kind: circle, radius: 12}
    health: {max: 50}
  - name: spike
    shape: {kind: rect, width: 30, height: 10}
    contactDamage: 5
  - name: arrow
    shape: {kind: circle, radius: 2}
    velocityX: 300
    projectile: {damage: 8, target: enemy, piercing: -1}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "arena", config.Name)
	assert.Equal(t, DefaultWorldSize, config.WorldSize, "missing world size takes the default")
	assert.Equal(t, DefaultTickRate, config.TickRate)
	require.Len(t, config.Entities, 3)
	assert.Equal(t, physics.Vec(10, -5), config.Entities[0].Position())
	assert.Equal(t, 50.0, config.Entities[0].Health.Max)
	assert.Equal(t, 5.0, config.Entities[1].ContactDamage)
	assert.Equal(t, physics.Vec(300, 0), config.Entities[2].Velocity())
	assert.Equal(t, PiercingAll, config.Entities[2].Projectile.Piercing)
	assert.NoError(t, Validate(config))
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "scene.toml"))
	assert.True(t, errors.Is(err, ErrUnknownFormat), "got %v", err)

	_, err = LoadConfig(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = Parse([]byte("{}"), Format("toml"))
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	assert.True(t, errors.Is(SaveConfig(DefaultConfig(), filepath.Join(dir, "out.txt")), ErrUnknownFormat))
}

func TestValidate(t *testing.T) {
	valid := func() *SceneConfig {
		return &SceneConfig{
			WorldSize: 500,
			TickRate:  30,
			Entities: []EntityConfig{
				{Name: "a", Shape: ShapeConfig{Kind: ShapeCircle, Radius: 5}},
			},
		}
	}

	tests := []struct {
		name       string
		mutate     func(c *SceneConfig)
		errorField string
	}{
		{"world size", func(c *SceneConfig) { c.WorldSize = 0 }, "worldSize"},
		{"tick rate", func(c *SceneConfig) { c.TickRate = -1 }, "tickRate"},
		{"empty name", func(c *SceneConfig) { c.Entities[0].Name = "" }, "entities[0].name"},
		{"duplicate name", func(c *SceneConfig) {
			c.Entities = append(c.Entities, c.Entities[0])
		}, "entities[1].name"},
		{"bad shape", func(c *SceneConfig) { c.Entities[0].Shape.Radius = 0 }, "entities[0].shape"},
		{"bad team", func(c *SceneConfig) { c.Entities[0].Team = "pirates" }, "entities[0].team"},
		{"script with cursor", func(c *SceneConfig) {
			c.Entities[0].Script = "x = 1"
			c.Entities[0].FollowCursor = true
		}, "entities[0].script"},
		{"negative contact damage", func(c *SceneConfig) { c.Entities[0].ContactDamage = -3 }, "entities[0].contactDamage"},
		{"zero health", func(c *SceneConfig) { c.Entities[0].Health = &HealthConfig{} }, "entities[0].health.max"},
		{"projectile target", func(c *SceneConfig) {
			c.Entities[0].Projectile = &ProjectileConfig{Damage: 1, Target: "everyone"}
		}, "entities[0].projectile.target"},
		{"projectile piercing", func(c *SceneConfig) {
			c.Entities[0].Projectile = &ProjectileConfig{Damage: 1, Piercing: -5}
		}, "entities[0].projectile.piercing"},
		{"negative knockback", func(c *SceneConfig) {
			c.Entities[0].Projectile = &ProjectileConfig{Damage: 1, Knockback: -10}
		}, "entities[0].projectile.knockback"},
		{"infinite knockback", func(c *SceneConfig) {
			c.Entities[0].Projectile = &ProjectileConfig{Damage: 1, Knockback: math.Inf(1)}
		}, "entities[0].projectile.knockback"},
	}

	require.NoError(t, Validate(valid()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)

			err := Validate(c)
			require.Error(t, err)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %T", err)
			assert.Equal(t, tt.errorField, validationErr.Field)
		})
	}

	t.Run("shape errors match sentinel", func(t *testing.T) {
		c := valid()
		c.Entities[0].Shape.Kind = "hexagon"
		assert.True(t, errors.Is(Validate(c), ErrInvalidShape))
	})

	t.Run("nil scene", func(t *testing.T) {
		assert.Error(t, Validate(nil))
	})

	t.Run("all problems reported", func(t *testing.T) {
		c := valid()
		c.TickRate = 0
		c.Entities[0].Team = "pirates"
		c.Entities[0].ContactDamage = -1
		joined, ok := Validate(c).(interface{ Unwrap() []error })
		require.True(t, ok)
		assert.Len(t, joined.Unwrap(), 3)
	})
}

func TestLoadScene(t *testing.T) {
	dir := t.TempDir()

	cfg, found, err := LoadScene(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "debug", cfg.Name)

	path := filepath.Join(dir, "arena.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: arena\ntickRate: 30\n"), 0o644))
	t.Setenv(EnvTickRate, "20")

	cfg, found, err = LoadScene(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "arena", cfg.Name)
	assert.Equal(t, 20, cfg.TickRate, "environment wins over the file")

	t.Setenv(EnvTickRate, "fast")
	_, _, err = LoadScene(path)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
