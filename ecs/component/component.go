package component

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// ComponentID identifies a component store. Zero is never issued.
type ComponentID uint32

var (
	nextComponentID atomic.Uint32
	names           sync.Map // ComponentID -> string
)

// Name returns the Go type name a component id was registered for.
func Name(id ComponentID) string {
	if v, ok := names.Load(id); ok {
		return v.(string)
	}
	return fmt.Sprintf("component(%d)", uint32(id))
}

// ComponentHandle is the typed key used by the ecs generic helpers.
type ComponentHandle[T any] struct {
	id ComponentID
}

func NewComponent[T any]() ComponentHandle[T] {
	id := ComponentID(nextComponentID.Add(1))
	var zero T
	names.Store(id, fmt.Sprintf("%T", zero))
	return ComponentHandle[T]{id: id}
}

func (h ComponentHandle[T]) ID() ComponentID {
	return h.id
}

func (h ComponentHandle[T]) Valid() bool {
	return h.id != 0
}

func (h ComponentHandle[T]) String() string {
	return Name(h.id)
}
