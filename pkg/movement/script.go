// pkg/movement/script.go
package movement

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/opd-ai/go-arena/pkg/entity"
)

// Every script sees math and these globals. Assigning x and y moves the
// entity; vx and vy update its velocity.
const scriptPrelude = "math := import(\"math\")\n"

// ScriptMover drives a transform with a tengo script. The script is
// compiled once and run every tick with x, y, vx, vy, t and dt set.
type ScriptMover struct {
	source   string
	compiled *tengo.Compiled
}

// NewScriptMover compiles source.
func NewScriptMover(source string) (*ScriptMover, error) {
	script := tengo.NewScript([]byte(scriptPrelude + source))
	for _, name := range []string{"x", "y", "vx", "vy", "t", "dt"} {
		if err := script.Add(name, 0.0); err != nil {
			return nil, fmt.Errorf("failed to declare %s: %w", name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile movement script: %w", err)
	}
	return &ScriptMover{source: source, compiled: compiled}, nil
}

// Source returns the script text without the prelude.
func (m *ScriptMover) Source() string {
	return m.source
}

// Move implements Mover.
func (m *ScriptMover) Move(t *entity.Transform, elapsed, dt float64) error {
	inputs := map[string]float64{
		"x":  t.Position.X,
		"y":  t.Position.Y,
		"vx": t.Velocity.X,
		"vy": t.Velocity.Y,
		"t":  elapsed,
		"dt": dt,
	}
	for name, v := range inputs {
		if err := m.compiled.Set(name, v); err != nil {
			return err
		}
	}

	if err := m.compiled.Run(); err != nil {
		return fmt.Errorf("movement script: %w", err)
	}

	x, err := m.number("x")
	if err != nil {
		return err
	}
	y, err := m.number("y")
	if err != nil {
		return err
	}
	vx, err := m.number("vx")
	if err != nil {
		return err
	}
	vy, err := m.number("vy")
	if err != nil {
		return err
	}

	t.Position.X, t.Position.Y = x, y
	t.Velocity.X, t.Velocity.Y = vx, vy
	return nil
}

func (m *ScriptMover) number(name string) (float64, error) {
	v := m.compiled.Get(name)
	switch v.ValueType() {
	case "float", "int":
		return v.Float(), nil
	default:
		return 0, fmt.Errorf("movement script: %s must be a number, got %s", name, v.ValueType())
	}
}
