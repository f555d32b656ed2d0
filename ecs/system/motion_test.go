package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMotionSystem(t *testing.T) {
	cases := []struct {
		name    string
		start   component.Transform
		vel     component.Velocity
		wantX   float64
		wantY   float64
		wantVel component.Velocity
	}{
		{"moves", component.Transform{X: 10, Y: 10}, component.Velocity{X: 5, Y: -2}, 15, 8, component.Velocity{X: 5, Y: -2}},
		{"bounces_right", component.Transform{X: 98, Y: 10}, component.Velocity{X: 5}, 100, 10, component.Velocity{X: -5}},
		{"bounces_bottom", component.Transform{X: 10, Y: 1}, component.Velocity{Y: -3}, 10, 0, component.Velocity{Y: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			w.AddSystem(NewMotionSystem(1, cp.BB{L: 0, B: 0, R: 100, T: 100}))
			e := w.CreateEntity()
			require.NoError(t, ecs.Add(w, e, component.TransformComponent, tc.start))
			require.NoError(t, ecs.Add(w, e, component.VelocityComponent, tc.vel))

			w.Update()

			tr, _ := ecs.Get(w, e, component.TransformComponent)
			vel, _ := ecs.Get(w, e, component.VelocityComponent)
			assert.InDelta(t, tc.wantX, tr.X, 1e-9)
			assert.InDelta(t, tc.wantY, tr.Y, 1e-9)
			assert.Equal(t, tc.wantVel, vel)
		})
	}
}

func TestMotionSystemSkipsInactive(t *testing.T) {
	w := ecs.NewWorld()
	w.AddSystem(NewMotionSystem(1, cp.BB{}))
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, component.TransformComponent, component.Transform{X: 1}))
	require.NoError(t, ecs.Add(w, e, component.VelocityComponent, component.Velocity{X: 1}))
	w.SetActive(e, false)

	w.Update()

	tr, _ := ecs.Get(w, e, component.TransformComponent)
	assert.Equal(t, 1.0, tr.X)
}
