// pkg/physics/shape.go
package physics

import "fmt"

// ShapeKind tags the variant held by a Shape.
type ShapeKind uint8

const (
	// ShapeInvalid is the zero value; it never collides with anything.
	ShapeInvalid ShapeKind = iota
	// ShapeRect is an axis-aligned rectangle described by its half extent.
	ShapeRect
	// ShapeCircle is a circle described by its radius.
	ShapeCircle
)

// String returns the lowercase name used in scene files and logs.
func (k ShapeKind) String() string {
	switch k {
	case ShapeRect:
		return "rect"
	case ShapeCircle:
		return "circle"
	default:
		return "invalid"
	}
}

// Shape is a closed sum type over the collision shapes the engine knows
// about. It is a plain value: copy it freely, it has no identity and never
// stores a world position. The shape is anchored at a position supplied by
// the caller on every query.
type Shape struct {
	kind       ShapeKind
	halfExtent Vector2D
	radius     float64
}

// NewRect creates a rectangle from its half extent (centre to edge).
func NewRect(halfExtent Vector2D) Shape {
	return Shape{kind: ShapeRect, halfExtent: halfExtent}
}

// NewRectFromSize creates a rectangle from its full width and height.
func NewRectFromSize(size Vector2D) Shape {
	return NewRect(size.Scale(0.5))
}

// NewCircle creates a circle with the given radius.
func NewCircle(radius float64) Shape {
	return Shape{kind: ShapeCircle, radius: radius}
}

// Kind reports which variant the shape holds.
func (s Shape) Kind() ShapeKind {
	return s.kind
}

// Valid reports whether the shape was built with one of the constructors.
// Degenerate sizes (zero or negative) are still valid shapes.
func (s Shape) Valid() bool {
	return s.kind == ShapeRect || s.kind == ShapeCircle
}

// HalfExtent returns the distance from centre to the bounding box edge on
// each axis. For a circle both components equal the radius.
func (s Shape) HalfExtent() Vector2D {
	switch s.kind {
	case ShapeRect:
		return s.halfExtent
	case ShapeCircle:
		return Vector2D{X: s.radius, Y: s.radius}
	default:
		return Vector2D{}
	}
}

// Radius returns the circle radius, or 0 for other kinds.
func (s Shape) Radius() float64 {
	if s.kind != ShapeCircle {
		return 0
	}
	return s.radius
}

// Size returns the full width and height of the shape's bounding box.
func (s Shape) Size() Vector2D {
	return s.HalfExtent().Scale(2)
}

// MinPoint returns the lower-left corner of the shape's AABB when the shape
// is placed at position.
func (s Shape) MinPoint(position Vector2D) Vector2D {
	return position.Sub(s.HalfExtent())
}

// MaxPoint returns the upper-right corner of the shape's AABB when the shape
// is placed at position.
func (s Shape) MaxPoint(position Vector2D) Vector2D {
	return position.Add(s.HalfExtent())
}

// Bounds returns the AABB of the shape placed at position.
func (s Shape) Bounds(position Vector2D) AABB {
	return AABB{Min: s.MinPoint(position), Max: s.MaxPoint(position)}
}

// ContainsPoint reports whether point lies inside the shape placed at
// position. Boundaries are inclusive. NaN coordinates never match.
func (s Shape) ContainsPoint(position, point Vector2D) bool {
	if point.IsNaN() || position.IsNaN() {
		return false
	}
	switch s.kind {
	case ShapeRect:
		return s.Bounds(position).Contains(point)
	case ShapeCircle:
		return position.Distance(point) <= s.radius
	default:
		return false
	}
}

func (s Shape) String() string {
	switch s.kind {
	case ShapeRect:
		return fmt.Sprintf("rect(%gx%g)", s.halfExtent.X*2, s.halfExtent.Y*2)
	case ShapeCircle:
		return fmt.Sprintf("circle(r=%g)", s.radius)
	default:
		return "invalid"
	}
}

// AABB is an axis-aligned bounding box given by its corners.
type AABB struct {
	Min Vector2D
	Max Vector2D
}

// Contains reports whether p lies inside the box, edges included.
func (b AABB) Contains(p Vector2D) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Overlaps reports whether the boxes intersect on both axes. Touching edges
// count as overlapping.
func (b AABB) Overlaps(other AABB) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vector2D {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Corners returns the four corners, min corner first, counter-clockwise.
func (b AABB) Corners() [4]Vector2D {
	return [4]Vector2D{
		b.Min,
		{X: b.Max.X, Y: b.Min.Y},
		b.Max,
		{X: b.Min.X, Y: b.Max.Y},
	}
}

