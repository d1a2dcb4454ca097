package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is a 2D position in drawing coordinates.
type Point = mgl64.Vec2

// Bounds is an axis-aligned bounding box. A degenerate box (zero width
// and/or height) is valid and represents a point or a line segment.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// BoundsAround builds the axis-aligned box covering center +- radius on
// both axes.
func BoundsAround(center mgl64.Vec2, radius float64) Bounds {
	return Bounds{
		MinX: center.X() - radius,
		MinY: center.Y() - radius,
		MaxX: center.X() + radius,
		MaxY: center.Y() + radius,
	}
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Area is width times height, zero for degenerate boxes.
func (b Bounds) Area() float64 { return b.Width() * b.Height() }

func (b Bounds) Center() mgl64.Vec2 {
	return mgl64.Vec2{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2}
}

// Intersects reports whether the two boxes overlap. Touching edges count.
func (b Bounds) Intersects(o Bounds) bool {
	return !(o.MinX > b.MaxX || o.MaxX < b.MinX || o.MinY > b.MaxY || o.MaxY < b.MinY)
}

// Contains reports whether o lies entirely inside b, edges included.
func (b Bounds) Contains(o Bounds) bool {
	return o.MinX >= b.MinX && o.MaxX <= b.MaxX && o.MinY >= b.MinY && o.MaxY <= b.MaxY
}

// ContainsPoint reports whether p lies inside b, edges included.
func (b Bounds) ContainsPoint(p mgl64.Vec2) bool {
	return p.X() >= b.MinX && p.X() <= b.MaxX && p.Y() >= b.MinY && p.Y() <= b.MaxY
}

// DistanceTo returns the Euclidean distance from p to the nearest edge or
// corner of b, zero when p is inside b.
func (b Bounds) DistanceTo(p mgl64.Vec2) float64 {
	dx := math.Max(0, math.Max(b.MinX-p.X(), p.X()-b.MaxX))
	dy := math.Max(0, math.Max(b.MinY-p.Y(), p.Y()-b.MaxY))
	return math.Sqrt(dx*dx + dy*dy)
}

// Expand grows all four edges outward by margin. A negative margin shrinks
// the box and may invert it; callers that care should Sanitize the result.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{b.MinX - margin, b.MinY - margin, b.MaxX + margin, b.MaxY + margin}
}

// Union returns the smallest box covering both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Diagonal is the length of the box diagonal.
func (b Bounds) Diagonal() float64 {
	return math.Sqrt(b.Width()*b.Width() + b.Height()*b.Height())
}

// Sanitize replaces non-finite coordinates with zero and swaps min/max per
// axis when inverted. The result is always well formed.
func (b Bounds) Sanitize() Bounds {
	s := Bounds{finiteOrZero(b.MinX), finiteOrZero(b.MinY), finiteOrZero(b.MaxX), finiteOrZero(b.MaxY)}
	if s.MinX > s.MaxX {
		s.MinX, s.MaxX = s.MaxX, s.MinX
	}
	if s.MinY > s.MaxY {
		s.MinY, s.MaxY = s.MaxY, s.MinY
	}
	return s
}

// IsValid reports whether all coordinates are finite and min <= max on both
// axes. It never corrects anything, use Sanitize for that.
func (b Bounds) IsValid() bool {
	if !isFinite(b.MinX) || !isFinite(b.MinY) || !isFinite(b.MaxX) || !isFinite(b.MaxY) {
		return false
	}
	return b.MinX <= b.MaxX && b.MinY <= b.MaxY
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrZero(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}
