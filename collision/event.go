package collision

import "github.com/milk9111/collide2d/ecs"

type EventType uint8

const (
	Enter EventType = iota
	Stay
	Exit
)

func (t EventType) String() string {
	switch t {
	case Enter:
		return "enter"
	case Stay:
		return "stay"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// Listener receives collision callbacks for one owner. other is the owner on
// the opposite side of the pair.
type Listener interface {
	OnCollisionEnter(other ecs.Entity)
	OnCollisionStay(other ecs.Entity)
	OnCollisionExit(other ecs.Entity)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Enter func(other ecs.Entity)
	Stay  func(other ecs.Entity)
	Exit  func(other ecs.Entity)
}

func (l ListenerFuncs) OnCollisionEnter(other ecs.Entity) {
	if l.Enter != nil {
		l.Enter(other)
	}
}

func (l ListenerFuncs) OnCollisionStay(other ecs.Entity) {
	if l.Stay != nil {
		l.Stay(other)
	}
}

func (l ListenerFuncs) OnCollisionExit(other ecs.Entity) {
	if l.Exit != nil {
		l.Exit(other)
	}
}

// Source resolves collider handles for the manager. It is implemented by the
// entity framework that owns the colliders.
type Source interface {
	// Snapshot returns the collider owned by h. ok is false when the handle
	// no longer resolves.
	Snapshot(h ecs.Entity) (c Collider, ok bool)
	// Listener returns the callbacks attached to h, if any.
	Listener(h ecs.Entity) (Listener, bool)
}

func notify(l Listener, t EventType, other ecs.Entity) {
	switch t {
	case Enter:
		l.OnCollisionEnter(other)
	case Stay:
		l.OnCollisionStay(other)
	case Exit:
		l.OnCollisionExit(other)
	}
}
