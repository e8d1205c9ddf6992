// pkg/collision/collider.go
package collision

import (
	"math"

	"github.com/opd-ai/go-arena/pkg/physics"
)

// CellSize is the side length of a broad-phase grid cell in world units.
const CellSize = 100.0

// CellCoord addresses one cell of the uniform grid.
type CellCoord struct {
	X, Y int32
}

// unreachableCell receives NaN coordinates. Nothing finite maps to it.
var unreachableCell = CellCoord{X: math.MinInt32, Y: math.MinInt32}

// CellOf returns the cell containing p.
func CellOf(p physics.Vector2D) CellCoord {
	if p.IsNaN() {
		return unreachableCell
	}
	return CellCoord{X: cellIndex(p.X), Y: cellIndex(p.Y)}
}

func cellIndex(v float64) int32 {
	f := math.Floor(v / CellSize)
	switch {
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32+1:
		return math.MinInt32 + 1
	}
	return int32(f)
}

// CellRange returns the inclusive range of cells covered by an AABB.
func CellRange(bounds physics.AABB) (lo, hi CellCoord) {
	if bounds.Min.IsNaN() || bounds.Max.IsNaN() {
		return unreachableCell, unreachableCell
	}
	lo, hi = CellOf(bounds.Min), CellOf(bounds.Max)
	// Inverted boxes from negative extents collapse to the min cell.
	if hi.X < lo.X {
		hi.X = lo.X
	}
	if hi.Y < lo.Y {
		hi.Y = lo.Y
	}
	return lo, hi
}

// cellSpan returns how many cells lie in the inclusive range, saturating
// at math.MaxInt64 when both axes cover most of the int32 range.
func cellSpan(lo, hi CellCoord) int64 {
	dx := int64(hi.X) - int64(lo.X) + 1
	dy := int64(hi.Y) - int64(lo.Y) + 1
	if dx > math.MaxInt64/dy {
		return math.MaxInt64
	}
	return dx * dy
}

// Collider gives an entity a collision shape. The shape is fixed at
// creation; SpatialCoord is rewritten by the grid on every rebuild and is
// only meant for inspection.
type Collider struct {
	shape        physics.Shape
	SpatialCoord CellCoord
}

// NewCollider creates a collider for shape.
func NewCollider(shape physics.Shape) *Collider {
	return &Collider{shape: shape}
}

// NewRectCollider creates a rectangle collider from its full width and height.
func NewRectCollider(size physics.Vector2D) *Collider {
	return NewCollider(physics.NewRectFromSize(size))
}

// NewCircleCollider creates a circle collider.
func NewCircleCollider(radius float64) *Collider {
	return NewCollider(physics.NewCircle(radius))
}

// Shape returns the collider's shape.
func (c *Collider) Shape() physics.Shape {
	return c.shape
}

// MinPoint returns the lower-left corner of the collider's box at pos.
func (c *Collider) MinPoint(pos physics.Vector2D) physics.Vector2D {
	return c.shape.MinPoint(pos)
}

// MaxPoint returns the upper-right corner of the collider's box at pos.
func (c *Collider) MaxPoint(pos physics.Vector2D) physics.Vector2D {
	return c.shape.MaxPoint(pos)
}

// ContainsPoint reports whether point lies inside the collider placed at pos.
func (c *Collider) ContainsPoint(pos, point physics.Vector2D) bool {
	return c.shape.ContainsPoint(pos, point)
}

// IsColliding runs the narrow phase against another collider.
func (c *Collider) IsColliding(pos physics.Vector2D, other *Collider, otherPos physics.Vector2D) bool {
	if other == nil {
		return false
	}
	return physics.IsColliding(c.shape, pos, other.shape, otherPos)
}

// Entry is one object submitted to a collision step.
type Entry struct {
	ID       uint64
	Collider *Collider
	Position physics.Vector2D
}

func (e Entry) valid() bool {
	return e.Collider != nil && e.Collider.shape.Valid()
}

func (e Entry) bounds() physics.AABB {
	return e.Collider.shape.Bounds(e.Position)
}
