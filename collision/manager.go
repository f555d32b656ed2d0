package collision

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/ecs"
)

// CheckMode selects the broad-phase strategy.
type CheckMode uint8

const (
	CheckQuadTree CheckMode = iota
	CheckLayerVsLayer
)

func (m CheckMode) String() string {
	switch m {
	case CheckQuadTree:
		return "quadtree"
	case CheckLayerVsLayer:
		return "layer_vs_layer"
	default:
		return fmt.Sprintf("CheckMode(%d)", uint8(m))
	}
}

func (m CheckMode) valid() bool {
	return m == CheckQuadTree || m == CheckLayerVsLayer
}

func ParseCheckMode(s string) (CheckMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quadtree", "quad_tree", "tree":
		return CheckQuadTree, nil
	case "layer_vs_layer", "layervslayer", "layers", "layer":
		return CheckLayerVsLayer, nil
	}
	return CheckQuadTree, fmt.Errorf("collision: unknown check mode %q", s)
}

// CheckParams tunes the broad phase.
type CheckParams struct {
	// MaxObjects is the node capacity before a quadtree node splits.
	MaxObjects int
	// MaxDepth bounds quadtree subdivision.
	MaxDepth int
	// FixedBounds uses Bounds as the quadtree root instead of the union of
	// collider bounds. Colliders outside it still grow the root.
	FixedBounds bool
	Bounds      cp.BB
	// Parallelism caps the layer-pair workers. Zero or less means GOMAXPROCS,
	// one runs every layer pair on the calling goroutine.
	Parallelism int
}

func DefaultCheckParams() CheckParams {
	return CheckParams{
		MaxObjects: DefaultMaxObjects,
		MaxDepth:   DefaultMaxDepth,
	}
}

func (p CheckParams) sanitized() CheckParams {
	if p.MaxObjects <= 0 {
		p.MaxObjects = DefaultMaxObjects
	}
	if p.MaxDepth < 0 {
		p.MaxDepth = DefaultMaxDepth
	}
	return p
}

// TickStats describes the most recent CheckCollisions call.
type TickStats struct {
	Colliders  int
	Candidates int
	Hits       int
	Enter      int
	Stay       int
	Exit       int
}

// Manager owns the collider registry and the cross-tick pair state. It is
// driven from a single goroutine.
type Manager struct {
	src    Source
	layers *LayerManager
	logger *log.Logger
	mode   CheckMode
	params CheckParams

	registry []ecs.Entity
	index    map[ecs.Entity]int

	previous pairSet
	current  pairSet
	tested   pairSet

	live       []Collider
	liveOwners map[ecs.Entity]struct{}
	candidates []*Collider
	buckets    [LayerCount][]*Collider
	stale      []ecs.Entity
	stats      TickStats
}

type ManagerOption func(*Manager)

func WithLogger(logger *log.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithCheckMode(mode CheckMode) ManagerOption {
	return func(m *Manager) {
		if mode.valid() {
			m.mode = mode
		}
	}
}

func WithCheckParams(p CheckParams) ManagerOption {
	return func(m *Manager) {
		m.params = p.sanitized()
	}
}

// NewManager builds a manager reading colliders from src. A nil layers uses
// an all-collide LayerManager.
func NewManager(src Source, layers *LayerManager, opts ...ManagerOption) *Manager {
	if layers == nil {
		layers = NewLayerManager()
	}
	m := &Manager{
		src:        src,
		layers:     layers,
		logger:     log.Default().WithPrefix("collision"),
		params:     DefaultCheckParams(),
		index:      make(map[ecs.Entity]int),
		previous:   make(pairSet),
		current:    make(pairSet),
		tested:     make(pairSet),
		liveOwners: make(map[ecs.Entity]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Layers() *LayerManager {
	return m.layers
}

func (m *Manager) CheckMode() CheckMode {
	return m.mode
}

func (m *Manager) CheckParams() CheckParams {
	return m.params
}

// Len returns the number of registered colliders.
func (m *Manager) Len() int {
	return len(m.registry)
}

// Stats returns counters from the last CheckCollisions call.
func (m *Manager) Stats() TickStats {
	return m.stats
}

// AddCollider registers the collider owned by h.
func (m *Manager) AddCollider(h ecs.Entity) bool {
	if !h.Valid() {
		return false
	}
	if _, ok := m.index[h]; ok {
		return false
	}
	m.index[h] = len(m.registry)
	m.registry = append(m.registry, h)
	return true
}

// RemoveCollider deregisters h. Pairs involving h are forgotten without an
// Exit event.
func (m *Manager) RemoveCollider(h ecs.Entity) bool {
	idx, ok := m.index[h]
	if !ok {
		return false
	}
	last := len(m.registry) - 1
	moved := m.registry[last]
	m.registry[idx] = moved
	m.index[moved] = idx
	m.registry = m.registry[:last]
	delete(m.index, h)

	for p := range m.previous {
		if p.Has(h) {
			delete(m.previous, p)
		}
	}
	return true
}

func (m *Manager) SetCheckMode(mode CheckMode) {
	if !mode.valid() {
		m.logger.Warn("ignoring unknown check mode", "mode", mode)
		return
	}
	if mode != m.mode {
		m.logger.Debug("check mode changed", "from", m.mode, "to", mode)
	}
	m.mode = mode
}

func (m *Manager) SetCheckModeParameters(p CheckParams) {
	m.params = p.sanitized()
}

// Colliding reports whether a and b overlapped in the last resolved tick.
func (m *Manager) Colliding(a, b ecs.Entity) bool {
	return m.previous.has(MakePair(a, b))
}

// Pairs returns the pairs that overlapped in the last resolved tick.
func (m *Manager) Pairs() []Pair {
	return m.previous.sorted()
}

// Reset forgets every collider and all collision state.
func (m *Manager) Reset() {
	m.registry = nil
	clear(m.index)
	clear(m.previous)
	clear(m.current)
	clear(m.tested)
	clear(m.liveOwners)
	m.live = m.live[:0]
	m.stats = TickStats{}
}

// CheckCollisions runs one tick: broad phase, narrow phase, classification
// against the previous tick, then Enter/Stay/Exit callbacks on both owners.
func (m *Manager) CheckCollisions() {
	if len(m.registry) < 2 {
		return
	}
	m.gather()
	m.stats = TickStats{Colliders: len(m.live)}
	clear(m.current)
	clear(m.tested)

	if len(m.live) >= 2 {
		switch m.mode {
		case CheckQuadTree:
			m.broadQuadTree()
		case CheckLayerVsLayer:
			m.broadLayers()
		}
	}
	m.resolve()
}

// gather snapshots every registered collider. Stale handles leave the
// registry, disabled or inactive colliders sit this tick out.
func (m *Manager) gather() {
	m.live = m.live[:0]
	m.stale = m.stale[:0]
	clear(m.liveOwners)

	nonFinite := 0
	for _, h := range m.registry {
		c, ok := m.src.Snapshot(h)
		if !ok {
			m.stale = append(m.stale, h)
			continue
		}
		if !c.Live() {
			continue
		}
		// A NaN or infinite bound would poison the quadtree root, so such
		// colliders sit the tick out in every mode.
		if !finiteBB(c.AABB()) {
			nonFinite++
			continue
		}
		c.Owner = h
		c.Layer = m.layers.Normalize(c.Layer)
		m.live = append(m.live, c)
		m.liveOwners[h] = struct{}{}
	}
	for _, h := range m.stale {
		m.RemoveCollider(h)
	}
	if len(m.stale) > 0 {
		m.logger.Debug("dropped stale colliders", "count", len(m.stale))
	}
	if nonFinite > 0 {
		m.logger.Debug("skipped non-finite colliders", "count", nonFinite)
	}
}

func finiteBB(bb cp.BB) bool {
	return finite(bb.L) && finite(bb.B) && finite(bb.R) && finite(bb.T)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (m *Manager) resolve() {
	var enter, stay, exit []Pair
	for p := range m.current {
		if m.previous.has(p) {
			stay = append(stay, p)
		} else {
			enter = append(enter, p)
		}
	}
	for p := range m.previous {
		if m.current.has(p) {
			continue
		}
		if !m.isLive(p.A) || !m.isLive(p.B) {
			continue
		}
		exit = append(exit, p)
	}
	sortPairs(enter)
	sortPairs(stay)
	sortPairs(exit)
	m.stats.Enter, m.stats.Stay, m.stats.Exit = len(enter), len(stay), len(exit)

	m.previous, m.current = m.current, m.previous
	clear(m.current)

	m.dispatch(Enter, enter)
	m.dispatch(Stay, stay)
	m.dispatch(Exit, exit)
}

func (m *Manager) isLive(h ecs.Entity) bool {
	_, ok := m.liveOwners[h]
	return ok
}

func (m *Manager) dispatch(t EventType, pairs []Pair) {
	for _, p := range pairs {
		if l, ok := m.src.Listener(p.A); ok && l != nil {
			notify(l, t, p.B)
		}
		if l, ok := m.src.Listener(p.B); ok && l != nil {
			notify(l, t, p.A)
		}
	}
}
