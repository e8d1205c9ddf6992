// pkg/render/engo/assets.go
package engo

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/opd-ai/go-arena/pkg/physics"
)

// FontURL is the asset name the HUD font is registered under.
const FontURL = "gomono.ttf"

// Overlay colours.
var (
	ColorIdle      color.Color = colornames.White
	ColorColliding color.Color = colornames.Red
	ColorHUD       color.Color = colornames.Yellow
)

// OutlineWidth is the border width of collider outlines in pixels.
const OutlineWidth = 2

// AssetManager loads the assets the viewer needs. Everything is built in
// memory so the viewer ships without asset files.
type AssetManager struct {
	font     *common.Font
	fontSize float64
}

// NewAssetManager creates a new asset manager
func NewAssetManager() *AssetManager {
	return &AssetManager{fontSize: 16}
}

// LoadAssets registers the embedded HUD font with engo and prepares it.
func (am *AssetManager) LoadAssets() error {
	if err := engo.Files.LoadReaderData(FontURL, bytes.NewReader(gomono.TTF)); err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	font := &common.Font{
		URL:  FontURL,
		FG:   ColorHUD,
		Size: am.fontSize,
	}
	if err := font.CreatePreloaded(); err != nil {
		return fmt.Errorf("prepare font: %w", err)
	}
	am.font = font
	return nil
}

// Font returns the HUD font, or nil before LoadAssets succeeded.
func (am *AssetManager) Font() *common.Font {
	return am.font
}

// OutlineDrawable returns an unfilled outline for shape in c. Shapes of
// unknown kind get nil.
func OutlineDrawable(shape physics.Shape, c color.Color) common.Drawable {
	switch shape.Kind() {
	case physics.ShapeRect:
		return common.Rectangle{BorderWidth: OutlineWidth, BorderColor: c}
	case physics.ShapeCircle:
		return common.Circle{BorderWidth: OutlineWidth, BorderColor: c}
	}
	return nil
}

// OutlineColor picks the overlay colour for an entity.
func OutlineColor(colliding bool) color.Color {
	if colliding {
		return ColorColliding
	}
	return ColorIdle
}
