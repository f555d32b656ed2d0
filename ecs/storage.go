package ecs

// entityStore tracks entity generations, active flags and free slots.
// Slot ids start at 1 so the zero Entity is never valid.
type entityStore struct {
	gens     []generation
	alive    []bool
	inactive []bool
	free     []entityID
	count    int
}

func (s *entityStore) create() Entity {
	if s == nil {
		return 0
	}
	var id entityID
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.gens = append(s.gens, 0)
		s.alive = append(s.alive, false)
		s.inactive = append(s.inactive, false)
		id = entityID(len(s.gens))
	}
	idx := int(id) - 1
	s.alive[idx] = true
	s.inactive[idx] = false
	s.count++
	return makeEntity(id, s.gens[idx])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	idx := int(e.id()) - 1
	s.gens[idx]++
	s.alive[idx] = false
	s.inactive[idx] = false
	s.free = append(s.free, e.id())
	s.count--
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	if s == nil || !e.Valid() || int(e.id()) > len(s.gens) {
		return false
	}
	idx := int(e.id()) - 1
	return s.alive[idx] && s.gens[idx] == e.generation()
}

func (s *entityStore) setActive(e Entity, active bool) bool {
	if !s.isAlive(e) {
		return false
	}
	s.inactive[int(e.id())-1] = !active
	return true
}

func (s *entityStore) isActive(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	return !s.inactive[int(e.id())-1]
}

func (s *entityStore) all() []Entity {
	if s == nil || s.count == 0 {
		return nil
	}
	out := make([]Entity, 0, s.count)
	for i, alive := range s.alive {
		if alive {
			out = append(out, makeEntity(entityID(i+1), s.gens[i]))
		}
	}
	return out
}
