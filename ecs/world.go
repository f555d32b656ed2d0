package ecs

import (
	"sort"

	"github.com/milk9111/collide2d/ecs/component"
)

// World owns entities, components, and system order.
type World struct {
	entities  entityStore
	stores    map[component.ComponentID]*SparseSet
	scheduler Scheduler
	events    EventQueue
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

// CreateEntity allocates a new, active entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity removes every component of e and invalidates the handle.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, store := range w.stores {
		if store.Has(e) {
			store.Remove(e)
		}
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// SetActive toggles whether an entity participates in simulation.
// Inactive entities keep their components.
func (w *World) SetActive(e Entity, active bool) bool {
	if w == nil {
		return false
	}
	return w.entities.setActive(e, active)
}

// IsActive reports whether e is alive and not deactivated.
func (w *World) IsActive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isActive(e)
}

// Entities returns all live entities in slot order.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil || s == nil {
		return
	}
	w.scheduler.Add(s)
}

// RemoveSystem drops s from the update order.
func (w *World) RemoveSystem(s System) bool {
	if w == nil || s == nil {
		return false
	}
	return w.scheduler.Remove(s)
}

// Update runs all systems once, then drops undrained events.
func (w *World) Update() {
	if w == nil {
		return
	}
	w.scheduler.Update(w)
	w.events.flush()
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	s, ok := w.stores[id]
	if !ok && create {
		if w.stores == nil {
			w.stores = make(map[component.ComponentID]*SparseSet)
		}
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

// AddComponent inserts or replaces the component stored under id.
func (w *World) AddComponent(e Entity, id component.ComponentID, value any) error {
	if id == 0 {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !w.IsAlive(e) {
		return component.ErrEntityNotAlive
	}
	w.store(id, true).Set(e, value)
	return nil
}

func (w *World) GetComponent(e Entity, id component.ComponentID) (any, bool) {
	if !w.IsAlive(e) {
		return nil, false
	}
	s := w.store(id, false)
	if !s.Has(e) {
		return nil, false
	}
	return s.Get(e), true
}

func (w *World) HasComponent(e Entity, id component.ComponentID) bool {
	return w.IsAlive(e) && w.store(id, false).Has(e)
}

func (w *World) RemoveComponent(e Entity, id component.ComponentID) bool {
	if !w.IsAlive(e) {
		return false
	}
	s := w.store(id, false)
	if !s.Has(e) {
		return false
	}
	return s.Remove(e)
}

// Query returns live entities that carry every listed component, sorted by handle.
func (w *World) Query(ids ...component.ComponentID) []Entity {
	if w == nil || len(ids) == 0 {
		return nil
	}
	out := w.store(ids[0], false).Entities()
	out = append([]Entity(nil), out...)
	for _, id := range ids[1:] {
		next := w.store(id, false)
		if next == nil {
			return nil
		}
		tmp := &SparseSet{}
		for _, e := range out {
			tmp.Set(e, struct{}{})
		}
		out = IntersectEntities(tmp, next)
	}
	alive := out[:0]
	for _, e := range out {
		if w.entities.isAlive(e) {
			alive = append(alive, e)
		}
	}
	sort.Slice(alive, func(i, j int) bool { return alive[i] < alive[j] })
	return alive
}

// First returns the lowest live entity carrying the component.
func (w *World) First(id component.ComponentID) (Entity, bool) {
	ents := w.Query(id)
	if len(ents) == 0 {
		return 0, false
	}
	return ents[0], true
}
