package collision

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/common"
	"github.com/milk9111/collide2d/ecs"
)

// ShapeKind tags the closed set of collider geometries.
type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota
	ShapeCircle
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeCircle:
		return "circle"
	default:
		return fmt.Sprintf("ShapeKind(%d)", uint8(k))
	}
}

// Shape is the local, unscaled geometry of a collider. HalfSize is read for
// boxes and Radius for circles.
type Shape struct {
	Kind     ShapeKind
	HalfSize cp.Vector
	Radius   float64
}

func Box(halfWidth, halfHeight float64) Shape {
	return Shape{Kind: ShapeBox, HalfSize: cp.Vector{X: halfWidth, Y: halfHeight}}
}

func Circle(radius float64) Shape {
	return Shape{Kind: ShapeCircle, Radius: radius}
}

// Transform places a shape in the world.
type Transform struct {
	Position cp.Vector
	Rotation float64
	Scale    cp.Vector
}

// Collider is the per-tick view of one registered collider.
type Collider struct {
	Owner     ecs.Entity
	Layer     Layer
	Enabled   bool
	Active    bool
	Shape     Shape
	Transform Transform
}

// Live reports whether the collider takes part in this tick.
func (c *Collider) Live() bool {
	return c.Enabled && c.Active
}

// OBB is an oriented box in world space. Axes are orthonormal.
type OBB struct {
	Center cp.Vector
	Axes   [2]cp.Vector
	Half   cp.Vector
}

// Corners returns the four world-space corners in winding order.
func (b OBB) Corners() [4]cp.Vector {
	ex := b.Axes[0].Mult(b.Half.X)
	ey := b.Axes[1].Mult(b.Half.Y)
	return [4]cp.Vector{
		b.Center.Sub(ex).Sub(ey),
		b.Center.Add(ex).Sub(ey),
		b.Center.Add(ex).Add(ey),
		b.Center.Sub(ex).Add(ey),
	}
}

// AABB returns the tight axis-aligned bounds of the box.
func (b OBB) AABB() cp.BB {
	hx := math.Abs(b.Axes[0].X)*b.Half.X + math.Abs(b.Axes[1].X)*b.Half.Y
	hy := math.Abs(b.Axes[0].Y)*b.Half.X + math.Abs(b.Axes[1].Y)*b.Half.Y
	return cp.NewBBForExtents(b.Center, hx, hy)
}

// WorldCircle is a circle in world space.
type WorldCircle struct {
	Center cp.Vector
	Radius float64
}

func (c WorldCircle) AABB() cp.BB {
	return cp.NewBBForExtents(c.Center, c.Radius, c.Radius)
}

func (t Transform) scale() cp.Vector {
	s := t.Scale
	if s.X == 0 && s.Y == 0 {
		return cp.Vector{X: 1, Y: 1}
	}
	return s
}

// OBB returns the box in world space with half extents scaled by |scale|.
func (c *Collider) OBB() OBB {
	s := c.Transform.scale()
	axis := cp.ForAngle(c.Transform.Rotation)
	return OBB{
		Center: c.Transform.Position,
		Axes:   [2]cp.Vector{axis, {X: -axis.Y, Y: axis.X}},
		Half: cp.Vector{
			X: math.Abs(c.Shape.HalfSize.X * s.X),
			Y: math.Abs(c.Shape.HalfSize.Y * s.Y),
		},
	}
}

// Circle returns the circle in world space. The radius is scaled by the
// smaller scale component so non-uniform scale never grows it into an
// ellipse's bounding circle.
func (c *Collider) Circle() WorldCircle {
	s := c.Transform.scale()
	return WorldCircle{
		Center: c.Transform.Position,
		Radius: math.Abs(c.Shape.Radius) * common.MinAbs(s.X, s.Y),
	}
}

// AABB returns conservative world bounds for broad-phase queries.
func (c *Collider) AABB() cp.BB {
	switch c.Shape.Kind {
	case ShapeBox:
		return c.OBB().AABB()
	case ShapeCircle:
		return c.Circle().AABB()
	default:
		panic(fmt.Sprintf("collision: unknown shape %s", c.Shape.Kind))
	}
}
