package ecs

import "strconv"

// Entity is a stable handle: slot index in the low 32 bits, slot generation
// in the high 32 bits. A destroyed slot bumps its generation so old handles
// stop resolving.
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

// Index returns the slot index of the handle.
func (e Entity) Index() uint32 {
	return uint32(e.id())
}

// Generation returns the slot generation of the handle.
func (e Entity) Generation() uint32 {
	return uint32(e.generation())
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.id()), 10) + "v" + strconv.FormatUint(uint64(e.generation()), 10)
}

func (e Entity) Valid() bool {
	return e.id() > 0
}
