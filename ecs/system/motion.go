package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/common"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
)

// MotionSystem integrates Velocity into Transform with a fixed step and
// reflects entities off the arena edges.
type MotionSystem struct {
	Step   float64
	Bounds cp.BB
}

func NewMotionSystem(step float64, bounds cp.BB) *MotionSystem {
	return &MotionSystem{Step: step, Bounds: bounds}
}

func (s *MotionSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	ids := []component.ComponentID{component.TransformComponent.ID(), component.VelocityComponent.ID()}
	for _, e := range w.Query(ids...) {
		if !w.IsActive(e) {
			continue
		}
		tr, _ := ecs.Get(w, e, component.TransformComponent)
		vel, _ := ecs.Get(w, e, component.VelocityComponent)

		tr.X += vel.X * s.Step
		tr.Y += vel.Y * s.Step
		tr.Rotation += vel.Spin * s.Step

		if s.Bounds.R > s.Bounds.L {
			if tr.X < s.Bounds.L || tr.X > s.Bounds.R {
				vel.X = -vel.X
				tr.X = common.Clamp(tr.X, s.Bounds.L, s.Bounds.R)
			}
		}
		if s.Bounds.T > s.Bounds.B {
			if tr.Y < s.Bounds.B || tr.Y > s.Bounds.T {
				vel.Y = -vel.Y
				tr.Y = common.Clamp(tr.Y, s.Bounds.B, s.Bounds.T)
			}
		}

		_ = ecs.Add(w, e, component.TransformComponent, tr)
		_ = ecs.Add(w, e, component.VelocityComponent, vel)
	}
}
