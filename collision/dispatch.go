package collision

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/common"
)

// Collide runs the narrow-phase test for a pair of colliders. Colliders whose
// bounds do not touch never collide. It is pure and safe for concurrent use.
func Collide(a, b *Collider) bool {
	if !a.AABB().Intersects(b.AABB()) {
		return false
	}
	switch a.Shape.Kind {
	case ShapeBox:
		switch b.Shape.Kind {
		case ShapeBox:
			return BoxBox(a.OBB(), b.OBB())
		case ShapeCircle:
			return BoxCircle(a.OBB(), b.Circle())
		}
	case ShapeCircle:
		switch b.Shape.Kind {
		case ShapeBox:
			return BoxCircle(b.OBB(), a.Circle())
		case ShapeCircle:
			return CircleCircle(a.Circle(), b.Circle())
		}
	}
	panic(fmt.Sprintf("collision: no test for %s/%s", a.Shape.Kind, b.Shape.Kind))
}

// BoxBox is the separating axis test over the two axes of each box.
// Touching intervals count as overlap.
func BoxBox(a, b OBB) bool {
	ca := a.Corners()
	cb := b.Corners()
	axes := [4]cp.Vector{a.Axes[0], a.Axes[1], b.Axes[0], b.Axes[1]}
	for _, axis := range axes {
		loA, hiA := common.ProjectCorners(axis, &ca)
		loB, hiB := common.ProjectCorners(axis, &cb)
		if !common.IntervalsOverlap(loA, hiA, loB, hiB) {
			return false
		}
	}
	return true
}

// CircleCircle collides when the center distance is at most the radius sum.
func CircleCircle(a, b WorldCircle) bool {
	r := a.Radius + b.Radius
	return a.Center.DistanceSq(b.Center) <= r*r
}

// BoxCircle clamps the circle center into the box frame to find the closest
// point on the box. A circle that only touches the box edge does not collide.
func BoxCircle(box OBB, c WorldCircle) bool {
	d := c.Center.Sub(box.Center)
	lx := common.Clamp(d.Dot(box.Axes[0]), -box.Half.X, box.Half.X)
	ly := common.Clamp(d.Dot(box.Axes[1]), -box.Half.Y, box.Half.Y)
	closest := box.Center.Add(box.Axes[0].Mult(lx)).Add(box.Axes[1].Mult(ly))
	return c.Center.DistanceSq(closest) < c.Radius*c.Radius
}
