// pkg/physics/narrowphase.go
package physics

import "math"

// IsColliding reports whether shape a placed at posA overlaps shape b placed
// at posB. It has no notion of time or identity, so callers must pass the
// positions for the current tick. The result is symmetric in its arguments.
func IsColliding(a Shape, posA Vector2D, b Shape, posB Vector2D) bool {
	switch a.kind {
	case ShapeRect:
		switch b.kind {
		case ShapeRect:
			return a.Bounds(posA).Overlaps(b.Bounds(posB))
		case ShapeCircle:
			return rectCircle(a.Bounds(posA), posB, b.radius)
		}
	case ShapeCircle:
		switch b.kind {
		case ShapeRect:
			return rectCircle(b.Bounds(posB), posA, a.radius)
		case ShapeCircle:
			return circleCircle(posA, a.radius, posB, b.radius)
		}
	}
	return false
}

// circleCircle uses a strict inequality: exactly tangent circles do not
// collide.
func circleCircle(posA Vector2D, radiusA float64, posB Vector2D, radiusB float64) bool {
	return posA.Distance(posB) < radiusA+radiusB
}

// rectCircle tests containment, then the four corners, then the gap to the
// nearest edge on whichever span the centre falls in. Corners go first so a
// circle sitting diagonally off a corner is not missed by the edge checks.
func rectCircle(rect AABB, center Vector2D, radius float64) bool {
	if rect.Contains(center) {
		return true
	}

	radiusSq := radius * radius
	for _, corner := range rect.Corners() {
		if radius >= 0 && center.DistanceSquared(corner) <= radiusSq {
			return true
		}
	}

	withinVertical := center.Y >= rect.Min.Y && center.Y <= rect.Max.Y
	if withinVertical {
		gap := math.Min(math.Abs(center.X-rect.Min.X), math.Abs(center.X-rect.Max.X))
		return gap <= radius
	}

	withinHorizontal := center.X >= rect.Min.X && center.X <= rect.Max.X
	if withinHorizontal {
		gap := math.Min(math.Abs(center.Y-rect.Min.Y), math.Abs(center.Y-rect.Max.Y))
		return gap <= radius
	}

	return false
}
