// pkg/render/engo/camera_test.go
package engo

import (
	"math"
	"testing"

	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-arena/pkg/physics"
)

func newTestCamera() *CameraSystem {
	camera := NewCameraSystem()
	camera.SetViewport(800, 600)
	return camera
}

func TestNewCameraSystem(t *testing.T) {
	camera := NewCameraSystem()

	if camera.GetZoom() != 1.0 {
		t.Errorf("Expected default zoom 1.0, got %f", camera.GetZoom())
	}
	lo, hi := camera.GetZoomLimits()
	if lo != 0.1 || hi != 8.0 {
		t.Errorf("Expected default zoom limits 0.1..8, got %f..%f", lo, hi)
	}
	if !camera.smoothing {
		t.Error("Expected smoothing to be enabled by default")
	}
	if camera.targetSet {
		t.Error("Expected targetSet to be false by default")
	}
}

func TestCameraSystem_clampZoom(t *testing.T) {
	camera := NewCameraSystem()

	testCases := []struct {
		name     string
		input    float32
		expected float32
	}{
		{"within_range", 2.0, 2.0},
		{"below_min", 0.01, 0.1},
		{"above_max", 20, 8.0},
		{"at_min", 0.1, 0.1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			camera.SetZoom(tc.input)
			if camera.GetZoom() != tc.expected {
				t.Errorf("SetZoom(%f): expected %f, got %f", tc.input, tc.expected, camera.GetZoom())
			}
		})
	}
}

func TestCameraSystem_ZoomLimitsClampCurrentZoom(t *testing.T) {
	camera := NewCameraSystem()
	camera.SetZoom(5)

	camera.SetZoomLimits(0.5, 2)
	if camera.GetZoom() != 2 {
		t.Errorf("Expected zoom clamped to 2, got %f", camera.GetZoom())
	}
}

func TestCameraSystem_SetTarget_ClearTarget(t *testing.T) {
	camera := newTestCamera()
	target := physics.Vec(100, 200)

	camera.SetTarget(target)
	if !camera.targetSet {
		t.Error("Expected targetSet to be true after setting target")
	}
	// First target snaps the camera.
	if camera.GetCurrentPosition() != target {
		t.Errorf("Expected currentPos %v, got %v", target, camera.GetCurrentPosition())
	}

	camera.ClearTarget()
	if camera.targetSet {
		t.Error("Expected targetSet to be false after clearing target")
	}
}

func TestCameraSystem_updateCameraPosition(t *testing.T) {
	t.Run("SmoothingEnabled", func(t *testing.T) {
		camera := newTestCamera()
		camera.SetTarget(physics.Vec(10, 0))
		camera.target = physics.Vec(110, 0)

		camera.updateCameraPosition(0.25)

		// followSpeed 2 * dt 0.25 covers half the distance.
		if got := camera.GetCurrentPosition().X; math.Abs(got-60) > 1e-9 {
			t.Errorf("Expected x=60 after one smoothed step, got %f", got)
		}
	})

	t.Run("SmoothingDisabled", func(t *testing.T) {
		camera := newTestCamera()
		camera.EnableSmoothing(false)
		camera.SetTarget(physics.Vec(10, 0))
		camera.target = physics.Vec(110, 0)

		camera.updateCameraPosition(0.25)
		if camera.GetCurrentPosition().X != 110 {
			t.Errorf("Expected camera at the target, got %v", camera.GetCurrentPosition())
		}
	})
}

func TestCameraSystem_WorldToScreen(t *testing.T) {
	testCases := []struct {
		name     string
		zoom     float32
		center   physics.Vector2D
		world    physics.Vector2D
		expected engo.Point
	}{
		{"origin", 1, physics.Vector2D{}, physics.Vec(0, 0), engo.Point{X: 400, Y: 300}},
		{"offset", 1, physics.Vector2D{}, physics.Vec(50, -20), engo.Point{X: 450, Y: 280}},
		{"zoomed", 2, physics.Vector2D{}, physics.Vec(50, -20), engo.Point{X: 500, Y: 260}},
		{"camera_moved", 1, physics.Vec(100, 100), physics.Vec(100, 100), engo.Point{X: 400, Y: 300}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			camera := newTestCamera()
			camera.EnableSmoothing(false)
			camera.SetZoom(tc.zoom)
			camera.SetTarget(tc.center)

			got := camera.WorldToScreen(tc.world)
			if got != tc.expected {
				t.Errorf("WorldToScreen(%v) = %v, want %v", tc.world, got, tc.expected)
			}
		})
	}
}

func TestCameraSystem_CoordinateTransformation_Consistency(t *testing.T) {
	camera := newTestCamera()
	camera.EnableSmoothing(false)
	camera.SetZoom(0.5)
	camera.SetTarget(physics.Vec(-30, 40))

	for _, world := range []physics.Vector2D{
		physics.Vec(0, 0),
		physics.Vec(123, -456),
		physics.Vec(-1000, 1000),
	} {
		back := camera.ScreenToWorld(camera.WorldToScreen(world))
		if back.Distance(world) > 1e-3 {
			t.Errorf("Round trip of %v gave %v", world, back)
		}
	}
}

func TestCameraSystem_FitWorld(t *testing.T) {
	camera := newTestCamera()
	camera.FitWorld(1200)

	if camera.GetZoom() != 0.5 {
		t.Errorf("Expected zoom 0.5 to fit 1200 units into 600 pixels, got %f", camera.GetZoom())
	}

	camera.FitWorld(0)
	if camera.GetZoom() != 0.5 {
		t.Errorf("FitWorld(0) should keep the zoom, got %f", camera.GetZoom())
	}
}
