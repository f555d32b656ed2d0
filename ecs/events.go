package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

// EventTypeCollision is the Event.Type used for CollisionEvent payloads.
const EventTypeCollision = "collision"

// CollisionEventKind identifies collision event types.
type CollisionEventKind string

const (
	CollisionEventEnter CollisionEventKind = "enter"
	CollisionEventStay  CollisionEventKind = "stay"
	CollisionEventExit  CollisionEventKind = "exit"
)

// CollisionEvent is emitted once per owner for every classified pair.
type CollisionEvent struct {
	Entity Entity
	Other  Entity
	Kind   CollisionEventKind
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
