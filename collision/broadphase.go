package collision

import (
	"runtime"

	"github.com/jakecoffman/cp"
	"golang.org/x/sync/errgroup"
)

// tryPair runs one quadtree candidate through the filters and the narrow phase.
func (m *Manager) tryPair(a, b *Collider) {
	if a.Owner == b.Owner {
		return
	}
	p := MakePair(a.Owner, b.Owner)
	if m.current.has(p) || !m.tested.add(p) {
		return
	}
	if !m.layers.Interacts(a.Layer, b.Layer) {
		return
	}
	m.stats.Candidates++
	if Collide(a, b) {
		m.current.add(p)
		m.stats.Hits++
	}
}

func (m *Manager) broadQuadTree() {
	tree := NewQuadTree(m.worldBounds(), m.params.MaxObjects, m.params.MaxDepth)
	for i := range m.live {
		tree.Insert(&m.live[i])
	}
	for i := range m.live {
		a := &m.live[i]
		m.candidates = tree.Retrieve(a.AABB(), m.candidates[:0])
		for _, b := range m.candidates {
			m.tryPair(a, b)
		}
	}
	clear(m.candidates)
}

// worldBounds returns the quadtree root. A fixed root is grown to cover
// colliders that fall outside it.
func (m *Manager) worldBounds() cp.BB {
	bounds := m.live[0].AABB()
	for i := 1; i < len(m.live); i++ {
		bounds = bounds.Merge(m.live[i].AABB())
	}
	if !m.params.FixedBounds {
		return bounds
	}
	fixed := m.params.Bounds
	if fixed.Contains(bounds) {
		return fixed
	}
	m.logger.Debug("colliders outside fixed bounds, growing root", "bounds", fixed, "colliders", bounds)
	return fixed.Merge(bounds)
}

// layerTask is one unordered layer pair. Each task writes only its own
// fields so tasks can run on separate goroutines.
type layerTask struct {
	i, j       Layer
	found      []Pair
	candidates int
}

func (m *Manager) broadLayers() {
	for l := range m.buckets {
		m.buckets[l] = m.buckets[l][:0]
	}
	for i := range m.live {
		c := &m.live[i]
		m.buckets[c.Layer] = append(m.buckets[c.Layer], c)
	}

	var tasks []layerTask
	for i := Layer(0); i < LayerCount; i++ {
		if len(m.buckets[i]) == 0 {
			continue
		}
		for j := i; j < LayerCount; j++ {
			if len(m.buckets[j]) == 0 || !m.layers.Interacts(i, j) {
				continue
			}
			if i == j && len(m.buckets[i]) < 2 {
				continue
			}
			tasks = append(tasks, layerTask{i: i, j: j})
		}
	}

	workers := m.params.Parallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || len(tasks) < 2 {
		for k := range tasks {
			m.runLayerTask(&tasks[k])
		}
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		for k := range tasks {
			t := &tasks[k]
			g.Go(func() error {
				m.runLayerTask(t)
				return nil
			})
		}
		_ = g.Wait()
	}

	// Merge on the calling goroutine in task order so the result does not
	// depend on scheduling.
	for k := range tasks {
		t := &tasks[k]
		m.stats.Candidates += t.candidates
		for _, p := range t.found {
			if m.current.add(p) {
				m.stats.Hits++
			}
		}
	}
	for l := range m.buckets {
		clear(m.buckets[l])
	}
}

// runLayerTask tests the cross product of two buckets, or the upper
// triangle of one bucket against itself. It only reads shared state.
func (m *Manager) runLayerTask(t *layerTask) {
	a := m.buckets[t.i]
	if t.i == t.j {
		for x := 0; x < len(a); x++ {
			for y := x + 1; y < len(a); y++ {
				m.testInto(t, a[x], a[y])
			}
		}
		return
	}
	b := m.buckets[t.j]
	for _, ca := range a {
		for _, cb := range b {
			m.testInto(t, ca, cb)
		}
	}
}

func (m *Manager) testInto(t *layerTask, a, b *Collider) {
	if a.Owner == b.Owner {
		return
	}
	t.candidates++
	if Collide(a, b) {
		t.found = append(t.found, MakePair(a.Owner, b.Owner))
	}
}
