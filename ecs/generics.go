package ecs

import "github.com/milk9111/collide2d/ecs/component"

func Add[T any](w *World, e Entity, handle component.ComponentHandle[T], value T) error {
	return w.AddComponent(e, handle.ID(), value)
}

func Remove[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.RemoveComponent(e, handle.ID())
}

func Has[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.HasComponent(e, handle.ID())
}

func Get[T any](w *World, e Entity, handle component.ComponentHandle[T]) (T, bool) {
	var zero T
	value, ok := w.GetComponent(e, handle.ID())
	if !ok {
		return zero, false
	}
	cast, ok := value.(T)
	if !ok {
		return zero, false
	}
	return cast, true
}

// ForEach visits every live entity that carries the component.
func ForEach[T any](w *World, handle component.ComponentHandle[T], fn func(Entity, T)) {
	if w == nil || fn == nil {
		return
	}
	for _, e := range w.Query(handle.ID()) {
		if v, ok := Get(w, e, handle); ok {
			fn(e, v)
		}
	}
}
