// Package scene builds the collision world shared by the demo commands.
package scene

import (
	"math"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/common"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/milk9111/collide2d/ecs/system"
	"github.com/milk9111/collide2d/settings"
)

// Arena is the default play area, in world units.
var Arena = cp.BB{L: 0, B: 0, R: 1280, T: 720}

type Config struct {
	Count    int
	Seed     uint64
	Bounds   cp.BB
	MinSize  float64
	MaxSize  float64
	MaxSpeed float64
	// Layers are assigned round-robin. Empty means every entity is on the default layer.
	Layers []collision.Layer
	// CircleRatio is the share of circles among spawned colliders.
	CircleRatio float64
}

func DefaultConfig() Config {
	return Config{
		Count:       200,
		Seed:        1,
		Bounds:      Arena,
		MinSize:     4,
		MaxSize:     16,
		MaxSpeed:    120,
		CircleRatio: 0.5,
	}
}

// Populate spawns cfg.Count moving colliders inside cfg.Bounds. The same
// seed always yields the same scene.
func Populate(w *ecs.World, cfg Config) []ecs.Entity {
	if w == nil || cfg.Count <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	out := make([]ecs.Entity, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		size := common.Lerp(cfg.MinSize, cfg.MaxSize, rng.Float64())
		col := component.Collider{Shape: component.ColliderBox, HalfWidth: size, HalfHeight: size * common.Lerp(0.5, 1.5, rng.Float64())}
		if rng.Float64() < cfg.CircleRatio {
			col = component.Collider{Shape: component.ColliderCircle, Radius: size}
		}
		if len(cfg.Layers) > 0 {
			col.Layer = uint8(cfg.Layers[i%len(cfg.Layers)])
		}

		heading := rng.Float64() * 2 * math.Pi
		speed := rng.Float64() * cfg.MaxSpeed
		e := w.CreateEntity()
		_ = ecs.Add(w, e, component.TransformComponent, component.Transform{
			X:        common.Lerp(cfg.Bounds.L, cfg.Bounds.R, rng.Float64()),
			Y:        common.Lerp(cfg.Bounds.B, cfg.Bounds.T, rng.Float64()),
			ScaleX:   1,
			ScaleY:   1,
			Rotation: rng.Float64() * 2 * math.Pi,
		})
		_ = ecs.Add(w, e, component.VelocityComponent, component.Velocity{
			X:    math.Cos(heading) * speed,
			Y:    math.Sin(heading) * speed,
			Spin: common.Lerp(-1, 1, rng.Float64()),
		})
		_ = ecs.Add(w, e, component.ColliderComponent, col)
		out = append(out, e)
	}
	return out
}

// NamedLayers returns the layers that carry a name, default layer excluded.
func NamedLayers(lm *collision.LayerManager) []collision.Layer {
	var out []collision.Layer
	for l := collision.Layer(1); l < collision.LayerCount; l++ {
		if lm.LayerName(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// NewCollisionSystem builds a collision system from the settings spec: the
// layer tables and inline rules are applied, then mode and parameters.
func NewCollisionSystem(spec *settings.CollisionSpec, logger *log.Logger) (*system.CollisionSystem, error) {
	if logger == nil {
		logger = log.Default()
	}
	layers := collision.NewLayerManager(collision.WithLayerLogger(logger.WithPrefix("layers")))
	if err := spec.ApplyLayers(layers); err != nil {
		return nil, err
	}
	opts, err := spec.ManagerOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, collision.WithLogger(logger.WithPrefix("collision")))
	return system.NewCollisionSystem(layers, opts...), nil
}
