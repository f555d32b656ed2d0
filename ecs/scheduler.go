package ecs

// System updates a world each frame.
type System interface {
	Update(w *World)
}

// Scheduler runs systems in insertion order. Order matters: a system that
// drains events must run after the systems that push them.
type Scheduler struct {
	systems []System
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

// Remove drops the first occurrence of system and keeps the order of the rest.
func (s *Scheduler) Remove(system System) bool {
	for i, existing := range s.systems {
		if existing == system {
			s.systems = append(s.systems[:i], s.systems[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Scheduler) Len() int {
	return len(s.systems)
}

func (s *Scheduler) Update(w *World) {
	// Snapshot so a system may add or remove systems mid-frame.
	systems := append([]System(nil), s.systems...)
	for _, system := range systems {
		system.Update(w)
	}
}
