package system

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"golang.org/x/image/colornames"
)

const debugCircleSegments = 24

// DebugView maps world coordinates onto the screen.
type DebugView struct {
	CamX       float64
	CamY       float64
	Zoom       float64
	DrawBounds bool
}

func (v DebugView) toScreen(p cp.Vector) (float32, float32) {
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return float32((p.X - v.CamX) * zoom), float32((p.Y - v.CamY) * zoom)
}

// DrawCollisionDebug outlines every collider the system knows about.
// Colliders in a pair from the last tick are drawn in red, disabled ones in gray.
func DrawCollisionDebug(s *CollisionSystem, w *ecs.World, screen *ebiten.Image, view DebugView) {
	if s == nil || w == nil || screen == nil {
		return
	}
	touching := make(map[ecs.Entity]bool)
	for _, p := range s.manager.Pairs() {
		touching[p.A] = true
		touching[p.B] = true
	}

	for _, e := range w.Query(component.ColliderComponent.ID()) {
		c, ok := s.Snapshot(e)
		if !ok {
			continue
		}
		clr := color.Color(colornames.Limegreen)
		switch {
		case !c.Live():
			clr = colornames.Gray
		case touching[e]:
			clr = colornames.Red
		}
		switch c.Shape.Kind {
		case collision.ShapeBox:
			corners := c.OBB().Corners()
			drawPolygon(screen, view, corners[:], clr)
		case collision.ShapeCircle:
			wc := c.Circle()
			drawCircle(screen, view, wc.Center, wc.Radius, clr)
		}
		if view.DrawBounds {
			drawBB(screen, view, c.AABB(), colornames.Steelblue)
		}
	}

	st := s.manager.Stats()
	text := fmt.Sprintf("Mode: %s\nColliders: %d\nCandidates: %d\nPairs: %d\nEnter/Stay/Exit: %d/%d/%d",
		s.manager.CheckMode(), st.Colliders, st.Candidates, st.Hits, st.Enter, st.Stay, st.Exit)
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}

func drawPolygon(screen *ebiten.Image, view DebugView, verts []cp.Vector, clr color.Color) {
	for i := range verts {
		x1, y1 := view.toScreen(verts[i])
		x2, y2 := view.toScreen(verts[(i+1)%len(verts)])
		vector.StrokeLine(screen, x1, y1, x2, y2, 1, clr, true)
	}
}

func drawCircle(screen *ebiten.Image, view DebugView, center cp.Vector, radius float64, clr color.Color) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	drawPolygon(screen, view, points, clr)
}

func drawBB(screen *ebiten.Image, view DebugView, bb cp.BB, clr color.Color) {
	drawPolygon(screen, view, []cp.Vector{
		{X: bb.L, Y: bb.B},
		{X: bb.R, Y: bb.B},
		{X: bb.R, Y: bb.T},
		{X: bb.L, Y: bb.T},
	}, clr)
}
