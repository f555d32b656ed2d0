package ecs

import (
	"errors"
	"testing"

	"github.com/milk9111/collide2d/ecs/component"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, w.CreateEntity())
			}
			if len(w.Entities()) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(w.Entities()))
			}
			if c.destroyIndex < 0 {
				return
			}
			if !w.DestroyEntity(ents[c.destroyIndex]) {
				t.Fatalf("DestroyEntity should return true for alive entity")
			}
			if w.IsAlive(ents[c.destroyIndex]) {
				t.Fatalf("entity should not be alive after destruction")
			}
			if w.DestroyEntity(ents[c.destroyIndex]) {
				t.Fatalf("second DestroyEntity should return false")
			}
			if len(w.Entities()) != c.create-1 {
				t.Fatalf("expected %d entities after destroy, got %d", c.create-1, len(w.Entities()))
			}
		})
	}
}

func TestWorldSlotReuseBumpsGeneration(t *testing.T) {
	w := NewWorld()
	old := w.CreateEntity()
	if !old.Valid() || old.Index() != 1 || old.Generation() != 0 {
		t.Fatalf("unexpected first handle %v", old)
	}
	w.DestroyEntity(old)

	reused := w.CreateEntity()
	if reused.Index() != old.Index() {
		t.Fatalf("expected slot %d to be reused, got %d", old.Index(), reused.Index())
	}
	if reused.Generation() != old.Generation()+1 {
		t.Fatalf("expected generation %d, got %d", old.Generation()+1, reused.Generation())
	}
	if w.IsAlive(old) {
		t.Fatalf("stale handle %v should not resolve", old)
	}
	if got := reused.String(); got != "1v1" {
		t.Fatalf("String() = %q", got)
	}

	h := component.NewComponent[int]()
	if err := Add(w, reused, h, 7); err != nil {
		t.Fatalf("add: %v", err)
	}
	if Has(w, old, h) {
		t.Fatalf("stale handle must not see the new generation's component")
	}
	if err := Add(w, old, h, 1); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
	if zero := Entity(0); zero.Valid() || w.IsAlive(zero) {
		t.Fatalf("zero entity must be invalid")
	}
}

func TestWorldComponents(t *testing.T) {
	w := NewWorld()
	ints := component.NewComponent[int]()
	strs := component.NewComponent[string]()

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()

	tests := []struct {
		name  string
		apply func() error
		check func(t *testing.T)
	}{
		{
			name:  "add_int_to_e1",
			apply: func() error { return Add(w, e1, ints, 42) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, ints)
				if !ok || v != 42 {
					t.Fatalf("expected 42, got %v (ok=%v)", v, ok)
				}
			},
		},
		{
			name:  "replace_int_on_e1",
			apply: func() error { return Add(w, e1, ints, 43) },
			check: func(t *testing.T) {
				if v, _ := Get(w, e1, ints); v != 43 {
					t.Fatalf("expected 43, got %v", v)
				}
			},
		},
		{
			name:  "add_string_to_e2",
			apply: func() error { return Add(w, e2, strs, "two") },
			check: func(t *testing.T) {
				if Has(w, e1, strs) {
					t.Fatalf("e1 should not have a string")
				}
				if v, ok := Get(w, e2, strs); !ok || v != "two" {
					t.Fatalf("expected two, got %q", v)
				}
			},
		},
		{
			name:  "nil_value_rejected",
			apply: func() error { return w.AddComponent(e1, strs.ID(), nil) },
			check: func(t *testing.T) {},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.apply()
			if tc.name == "nil_value_rejected" {
				if !errors.Is(err, component.ErrNilComponent) {
					t.Fatalf("expected ErrNilComponent, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tc.check(t)
		})
	}

	if !Remove(w, e1, ints) {
		t.Fatalf("Remove should report the removed component")
	}
	if Remove(w, e1, ints) {
		t.Fatalf("second Remove should return false")
	}
	if err := w.AddComponent(e1, 0, 1); !errors.Is(err, component.ErrInvalidComponentKind) {
		t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
	}
}

func TestWorldQuery(t *testing.T) {
	w := NewWorld()
	pos := component.NewComponent[float64]()
	tag := component.NewComponent[string]()

	var withBoth []Entity
	for i := 0; i < 6; i++ {
		e := w.CreateEntity()
		_ = Add(w, e, pos, float64(i))
		if i%2 == 0 {
			_ = Add(w, e, tag, "even")
			withBoth = append(withBoth, e)
		}
	}

	got := w.Query(pos.ID(), tag.ID())
	if len(got) != len(withBoth) {
		t.Fatalf("expected %d entities, got %d", len(withBoth), len(got))
	}
	for i := range got {
		if got[i] != withBoth[i] {
			t.Fatalf("query order: got %v want %v", got, withBoth)
		}
	}

	w.DestroyEntity(withBoth[0])
	if got := w.Query(tag.ID()); len(got) != len(withBoth)-1 {
		t.Fatalf("destroyed entity should leave the query, got %v", got)
	}
	if first, ok := w.First(tag.ID()); !ok || first != withBoth[1] {
		t.Fatalf("First = %v, %v", first, ok)
	}

	sum := 0.0
	ForEach(w, pos, func(_ Entity, v float64) { sum += v })
	if sum != 1+2+3+4+5 {
		t.Fatalf("ForEach sum = %v", sum)
	}

	unused := component.NewComponent[bool]()
	if got := w.Query(pos.ID(), unused.ID()); len(got) != 0 {
		t.Fatalf("query with empty store should be empty, got %v", got)
	}
}

func TestWorldActiveFlag(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	if !w.IsActive(e) {
		t.Fatalf("new entities start active")
	}
	if !w.SetActive(e, false) || w.IsActive(e) {
		t.Fatalf("entity should be inactive")
	}
	if !w.IsAlive(e) {
		t.Fatalf("inactive entity is still alive")
	}
	w.DestroyEntity(e)
	reused := w.CreateEntity()
	if !w.IsActive(reused) {
		t.Fatalf("reused slot should start active")
	}
	if w.SetActive(e, true) {
		t.Fatalf("SetActive on a stale handle should fail")
	}
}

type recordingSystem struct {
	seen []int
}

func (s *recordingSystem) Update(w *World) {
	s.seen = append(s.seen, w.Events().Len())
	w.Events().Push(Event{Type: "tick"})
}

func TestWorldUpdateFlushesEvents(t *testing.T) {
	w := NewWorld()
	first := &recordingSystem{}
	second := &recordingSystem{}
	w.AddSystem(first)
	w.AddSystem(second)

	w.Update()
	w.Update()

	if len(first.seen) != 2 || first.seen[0] != 0 || first.seen[1] != 0 {
		t.Fatalf("events should be flushed between updates, got %v", first.seen)
	}
	if second.seen[0] != 1 {
		t.Fatalf("later systems see earlier events in the same update, got %v", second.seen)
	}
	if w.Events().Drain() != nil {
		t.Fatalf("queue should be empty after Update")
	}
}

func TestSparseSetSwapRemove(t *testing.T) {
	var s SparseSet
	a, b, c := makeEntity(1, 0), makeEntity(2, 0), makeEntity(3, 0)
	s.Set(a, "a")
	s.Set(b, "b")
	s.Set(c, "c")

	if !s.Remove(a) {
		t.Fatalf("Remove(a) should succeed")
	}
	if s.Len() != 2 || s.Has(a) {
		t.Fatalf("unexpected state after remove: len=%d", s.Len())
	}
	if s.Get(c) != "c" || s.Get(b) != "b" {
		t.Fatalf("moved values must stay addressable")
	}
	if s.Has(makeEntity(3, 1)) {
		t.Fatalf("a different generation must not match")
	}
}

type countingSystem struct{ n int }

func (s *countingSystem) Update(*World) { s.n++ }

func TestSchedulerRemove(t *testing.T) {
	w := NewWorld()
	a, b := &countingSystem{}, &countingSystem{}
	w.AddSystem(a)
	w.AddSystem(b)
	w.Update()

	if !w.RemoveSystem(a) || w.RemoveSystem(a) {
		t.Fatalf("RemoveSystem should succeed once")
	}
	w.Update()
	if a.n != 1 || b.n != 2 {
		t.Fatalf("unexpected update counts a=%d b=%d", a.n, b.n)
	}
}

func TestComponentNames(t *testing.T) {
	h := component.NewComponent[component.Transform]()
	if got := h.String(); got != "component.Transform" {
		t.Fatalf("String() = %q", got)
	}
	if got := component.Name(0); got != "component(0)" {
		t.Fatalf("Name(0) = %q", got)
	}
}
