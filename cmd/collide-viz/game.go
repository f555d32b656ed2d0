package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/system"
	"github.com/milk9111/collide2d/scene"
	"github.com/milk9111/collide2d/settings"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type Game struct {
	frames int
	paused bool
	seed   uint64
	count  int

	logger     *log.Logger
	world      *ecs.World
	collisions *system.CollisionSystem
	view       system.DebugView
}

func NewGame(count int, seed uint64, logger *log.Logger) (*Game, error) {
	spec, err := settings.LoadCollisionSpec()
	if err != nil {
		return nil, err
	}
	collisions, err := scene.NewCollisionSystem(spec, logger)
	if err != nil {
		return nil, err
	}
	g := &Game{
		seed:       seed,
		count:      count,
		logger:     logger,
		collisions: collisions,
		view:       system.DebugView{Zoom: 1},
	}
	g.respawn()
	return g, nil
}

// respawn builds a fresh world; the collision system resets itself when it
// sees the new world.
func (g *Game) respawn() {
	w := ecs.NewWorld()
	w.AddSystem(system.NewMotionSystem(1.0/float64(ebiten.TPS()), scene.Arena))
	w.AddSystem(g.collisions)

	cfg := scene.DefaultConfig()
	cfg.Count = g.count
	cfg.Seed = g.seed
	cfg.Layers = scene.NamedLayers(g.collisions.Manager().Layers())
	scene.Populate(w, cfg)
	g.world = w
}

func (g *Game) Update() error {
	g.frames++

	m := g.collisions.Manager()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		next := collision.CheckLayerVsLayer
		if m.CheckMode() == collision.CheckLayerVsLayer {
			next = collision.CheckQuadTree
		}
		m.SetCheckMode(next)
		g.logger.Info("check mode", "mode", next)
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.view.DrawBounds = !g.view.DrawBounds
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.seed++
		g.respawn()
	}

	if !g.paused {
		g.world.Update()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	system.DrawCollisionDebug(g.collisions, g.world, screen, g.view)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.2f  [M]ode [D]bounds [Space]pause [R]eseed", ebiten.ActualFPS()), 10, baseHeight-20)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
