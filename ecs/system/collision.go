package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
)

// CollisionSystem feeds ECS colliders into a collision.Manager and turns the
// resulting Enter/Stay/Exit callbacks into listener calls and world events.
type CollisionSystem struct {
	manager    *collision.Manager
	world      *ecs.World
	listeners  map[ecs.Entity]collision.Listener
	registered map[ecs.Entity]struct{}
	forward    map[ecs.Entity]*eventForwarder
}

// NewCollisionSystem builds the system and its manager. opts are passed to
// collision.NewManager.
func NewCollisionSystem(layers *collision.LayerManager, opts ...collision.ManagerOption) *CollisionSystem {
	s := &CollisionSystem{
		listeners:  make(map[ecs.Entity]collision.Listener),
		registered: make(map[ecs.Entity]struct{}),
		forward:    make(map[ecs.Entity]*eventForwarder),
	}
	s.manager = collision.NewManager(s, layers, opts...)
	return s
}

func (s *CollisionSystem) Manager() *collision.Manager {
	if s == nil {
		return nil
	}
	return s.manager
}

// SetListener attaches callbacks to e. A nil listener detaches them.
func (s *CollisionSystem) SetListener(e ecs.Entity, l collision.Listener) {
	if s == nil {
		return
	}
	if l == nil {
		delete(s.listeners, e)
		return
	}
	s.listeners[e] = l
}

// Update registers new colliders, drops destroyed ones and runs one check.
func (s *CollisionSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	if s.world != nil && s.world != w {
		s.Reset()
	}
	s.world = w
	s.sync(w)
	s.manager.CheckCollisions()
}

// Reset forgets every collider, listener and pair, e.g. on level teardown.
func (s *CollisionSystem) Reset() {
	if s == nil {
		return
	}
	s.manager.Reset()
	clear(s.registered)
	clear(s.listeners)
	clear(s.forward)
	s.world = nil
}

func (s *CollisionSystem) sync(w *ecs.World) {
	for e := range s.registered {
		if !ecs.Has(w, e, component.ColliderComponent) {
			s.manager.RemoveCollider(e)
			delete(s.registered, e)
			delete(s.forward, e)
			if !w.IsAlive(e) {
				delete(s.listeners, e)
			}
		}
	}
	for _, e := range w.Query(component.ColliderComponent.ID()) {
		if _, ok := s.registered[e]; ok {
			continue
		}
		s.registered[e] = struct{}{}
		s.manager.AddCollider(e)
	}
}

// Snapshot implements collision.Source.
func (s *CollisionSystem) Snapshot(e ecs.Entity) (collision.Collider, bool) {
	w := s.world
	if w == nil || !w.IsAlive(e) {
		return collision.Collider{}, false
	}
	col, ok := ecs.Get(w, e, component.ColliderComponent)
	if !ok {
		return collision.Collider{}, false
	}
	tr, _ := ecs.Get(w, e, component.TransformComponent)
	return BuildCollider(e, col, tr, w.IsActive(e)), true
}

// Listener implements collision.Source. Every owner gets a forwarder that
// pushes world events, wrapping any listener set with SetListener.
func (s *CollisionSystem) Listener(e ecs.Entity) (collision.Listener, bool) {
	if s.world == nil || !s.world.IsAlive(e) {
		return nil, false
	}
	f, ok := s.forward[e]
	if !ok {
		f = &eventForwarder{sys: s, self: e}
		s.forward[e] = f
	}
	return f, true
}

// BuildCollider converts ECS components into a collision snapshot. The
// collider offset is applied in the entity's rotated, scaled frame.
func BuildCollider(e ecs.Entity, col component.Collider, tr component.Transform, active bool) collision.Collider {
	scale := cp.Vector{X: tr.ScaleX, Y: tr.ScaleY}
	if scale.X == 0 {
		scale.X = 1
	}
	if scale.Y == 0 {
		scale.Y = 1
	}
	offset := cp.Vector{X: col.OffsetX * scale.X, Y: col.OffsetY * scale.Y}
	pos := cp.Vector{X: tr.X, Y: tr.Y}.Add(offset.Rotate(cp.ForAngle(tr.Rotation)))

	var shape collision.Shape
	switch col.Shape {
	case component.ColliderCircle:
		shape = collision.Circle(col.Radius)
	default:
		shape = collision.Box(col.HalfWidth, col.HalfHeight)
	}
	return collision.Collider{
		Owner:   e,
		Layer:   collision.Layer(col.Layer),
		Enabled: !col.Disabled,
		Active:  active,
		Shape:   shape,
		Transform: collision.Transform{
			Position: pos,
			Rotation: tr.Rotation,
			Scale:    scale,
		},
	}
}

type eventForwarder struct {
	sys  *CollisionSystem
	self ecs.Entity
}

func (f *eventForwarder) emit(kind ecs.CollisionEventKind, other ecs.Entity) {
	if w := f.sys.world; w != nil {
		w.Events().Push(ecs.Event{
			Type: ecs.EventTypeCollision,
			Data: ecs.CollisionEvent{Entity: f.self, Other: other, Kind: kind},
		})
	}
}

func (f *eventForwarder) OnCollisionEnter(other ecs.Entity) {
	f.emit(ecs.CollisionEventEnter, other)
	if l, ok := f.sys.listeners[f.self]; ok {
		l.OnCollisionEnter(other)
	}
}

func (f *eventForwarder) OnCollisionStay(other ecs.Entity) {
	f.emit(ecs.CollisionEventStay, other)
	if l, ok := f.sys.listeners[f.self]; ok {
		l.OnCollisionStay(other)
	}
}

func (f *eventForwarder) OnCollisionExit(other ecs.Entity) {
	f.emit(ecs.CollisionEventExit, other)
	if l, ok := f.sys.listeners[f.self]; ok {
		l.OnCollisionExit(other)
	}
}

// CollisionEvents filters collision payloads out of drained world events.
func CollisionEvents(events []ecs.Event) []ecs.CollisionEvent {
	var out []ecs.CollisionEvent
	for _, evt := range events {
		if evt.Type != ecs.EventTypeCollision {
			continue
		}
		if ce, ok := evt.Data.(ecs.CollisionEvent); ok {
			out = append(out, ce)
		}
	}
	return out
}
