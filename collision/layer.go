package collision

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Layer is a collision layer id in [0, LayerCount).
type Layer uint8

const (
	LayerDefault Layer = 0
	// LayerCount is the number of addressable layers and doubles as the
	// invalid-layer sentinel.
	LayerCount Layer = 32
)

const allLayersMask = ^uint32(0)

var (
	errEmptyTable    = errors.New("table is empty")
	errUnknownLayer  = errors.New("unknown layer")
	errLayerRange    = errors.New("layer id out of range")
	errDuplicateName = errors.New("duplicate layer name")
	errDuplicateID   = errors.New("duplicate layer id")
)

// Valid reports whether l addresses a real layer.
func (l Layer) Valid() bool {
	return l < LayerCount
}

func (l Layer) bit() uint32 {
	return 1 << uint32(l)
}

// LayerManager answers whether two layers may collide. Each layer owns one
// bitmask row; bit j of row i allows i to collide with j.
//
// Reads are safe to run concurrently with each other and with mutations.
type LayerManager struct {
	mu       sync.RWMutex
	names    [LayerCount]string
	byName   map[string]Layer
	masks    [LayerCount]uint32
	fallback bool
	logger   *log.Logger
}

type LayerOption func(*LayerManager)

// WithFallback sets the answer CanCollide gives for out-of-range layer ids.
func WithFallback(allow bool) LayerOption {
	return func(m *LayerManager) {
		m.fallback = allow
	}
}

func WithLayerLogger(logger *log.Logger) LayerOption {
	return func(m *LayerManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewLayerManager returns a manager where every layer collides with every
// other layer and layer 0 is named "Default".
func NewLayerManager(opts ...LayerOption) *LayerManager {
	m := &LayerManager{
		byName:   map[string]Layer{"Default": LayerDefault},
		fallback: true,
		logger:   log.Default().WithPrefix("layers"),
	}
	m.names[LayerDefault] = "Default"
	for i := range m.masks {
		m.masks[i] = allLayersMask
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadLayers replaces the id/name table. Each row is either "name" (the id
// is the row index) or "id,name". On failure the current table is kept.
func (m *LayerManager) LoadLayers(r io.Reader) bool {
	names, byName, err := parseLayerTable(r)
	if err != nil {
		m.logger.Warn("load layers", "err", err)
		return false
	}
	m.mu.Lock()
	m.names = names
	m.byName = byName
	m.mu.Unlock()
	return true
}

// LoadLayersFile is LoadLayers over a file on disk.
func (m *LayerManager) LoadLayersFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		m.logger.Warn("load layers", "path", path, "err", err)
		return false
	}
	defer f.Close()
	return m.LoadLayers(f)
}

// LoadCollisionMatrix reads a square adjacency table. The header row holds a
// corner cell followed by column layer names; every following row holds a
// row layer name followed by one 0/1 per column. Layers missing from the
// table keep colliding with everything. On failure the matrix is unchanged.
func (m *LayerManager) LoadCollisionMatrix(r io.Reader) bool {
	m.mu.RLock()
	byName := m.byName
	m.mu.RUnlock()

	masks, err := parseMatrix(r, byName)
	if err != nil {
		m.logger.Warn("load collision matrix", "err", err)
		return false
	}
	m.mu.Lock()
	m.masks = masks
	m.mu.Unlock()
	return true
}

// LoadCollisionMatrixFile is LoadCollisionMatrix over a file on disk.
func (m *LayerManager) LoadCollisionMatrixFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		m.logger.Warn("load collision matrix", "path", path, "err", err)
		return false
	}
	defer f.Close()
	return m.LoadCollisionMatrix(f)
}

// CanCollide tests bit b of row a.
func (m *LayerManager) CanCollide(a, b Layer) bool {
	if !a.Valid() || !b.Valid() {
		return m.fallback
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.masks[a]&b.bit() != 0
}

// Interacts reports whether either layer allows the other.
func (m *LayerManager) Interacts(a, b Layer) bool {
	return m.CanCollide(a, b) || m.CanCollide(b, a)
}

func (m *LayerManager) CollisionMask(l Layer) uint32 {
	if !l.Valid() {
		if m.fallback {
			return allLayersMask
		}
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.masks[l]
}

func (m *LayerManager) SetCollisionMask(l Layer, mask uint32) bool {
	if !l.Valid() {
		return false
	}
	m.mu.Lock()
	m.masks[l] = mask
	m.mu.Unlock()
	return true
}

// AllowCollision sets bit b in row a only.
func (m *LayerManager) AllowCollision(a, b Layer) bool {
	return m.setBit(a, b, true)
}

// DenyCollision clears bit b in row a only.
func (m *LayerManager) DenyCollision(a, b Layer) bool {
	return m.setBit(a, b, false)
}

// SetCollisionMaskBothWays updates rows a and b together.
func (m *LayerManager) SetCollisionMaskBothWays(a, b Layer, allowed bool) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assign(a, b, allowed)
	m.assign(b, a, allowed)
	return true
}

// SetByName is SetCollisionMaskBothWays addressed by layer names or numeric ids.
func (m *LayerManager) SetByName(a, b string, allowed bool) bool {
	la, okA := m.LayerByName(a)
	lb, okB := m.LayerByName(b)
	if !okA || !okB {
		m.logger.Warn("set collision by name", "a", a, "b", b, "err", errUnknownLayer)
		return false
	}
	return m.SetCollisionMaskBothWays(la, lb, allowed)
}

func (m *LayerManager) setBit(a, b Layer, allowed bool) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	m.mu.Lock()
	m.assign(a, b, allowed)
	m.mu.Unlock()
	return true
}

func (m *LayerManager) assign(a, b Layer, allowed bool) {
	if allowed {
		m.masks[a] |= b.bit()
	} else {
		m.masks[a] &^= b.bit()
	}
}

// ResetMatrix restores the all-collide matrix. Names are kept.
func (m *LayerManager) ResetMatrix() {
	m.mu.Lock()
	for i := range m.masks {
		m.masks[i] = allLayersMask
	}
	m.mu.Unlock()
}

// Normalize maps out-of-range ids to LayerDefault.
func (m *LayerManager) Normalize(l Layer) Layer {
	if !l.Valid() {
		return LayerDefault
	}
	return l
}

// LayerByName resolves a layer name, or a decimal id, to a Layer.
func (m *LayerManager) LayerByName(name string) (Layer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return resolveLayer(strings.TrimSpace(name), m.byName)
}

func (m *LayerManager) LayerName(l Layer) string {
	if !l.Valid() {
		return ""
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.names[l]
}

// AllowedCount returns how many layers row l allows.
func (m *LayerManager) AllowedCount(l Layer) int {
	return bits.OnesCount32(m.CollisionMask(l))
}

func resolveLayer(name string, byName map[string]Layer) (Layer, bool) {
	if l, ok := byName[name]; ok {
		return l, true
	}
	id, err := strconv.Atoi(name)
	if err != nil || id < 0 || id >= int(LayerCount) {
		return LayerCount, false
	}
	return Layer(id), true
}

func newTableReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

func parseLayerTable(r io.Reader) ([LayerCount]string, map[string]Layer, error) {
	var names [LayerCount]string
	byName := make(map[string]Layer)

	records, err := newTableReader(r).ReadAll()
	if err != nil {
		return names, nil, fmt.Errorf("read layer table: %w", err)
	}
	if len(records) == 0 {
		return names, nil, errEmptyTable
	}
	for row, rec := range records {
		var (
			id   = row
			name string
		)
		switch {
		case len(rec) == 1:
			name = strings.TrimSpace(rec[0])
		case len(rec) >= 2:
			id, err = strconv.Atoi(strings.TrimSpace(rec[0]))
			if err != nil {
				return names, nil, fmt.Errorf("layer table row %d: %w", row+1, err)
			}
			name = strings.TrimSpace(rec[1])
		}
		if name == "" {
			return names, nil, fmt.Errorf("layer table row %d: empty name", row+1)
		}
		if id < 0 || id >= int(LayerCount) {
			return names, nil, fmt.Errorf("layer table row %d: %w: %d", row+1, errLayerRange, id)
		}
		if names[id] != "" {
			return names, nil, fmt.Errorf("layer table row %d: %w: %d", row+1, errDuplicateID, id)
		}
		if _, ok := byName[name]; ok {
			return names, nil, fmt.Errorf("layer table row %d: %w: %q", row+1, errDuplicateName, name)
		}
		names[id] = name
		byName[name] = Layer(id)
	}
	return names, byName, nil
}

func parseMatrix(r io.Reader, byName map[string]Layer) ([LayerCount]uint32, error) {
	var masks [LayerCount]uint32
	for i := range masks {
		masks[i] = allLayersMask
	}

	records, err := newTableReader(r).ReadAll()
	if err != nil {
		return masks, fmt.Errorf("read collision matrix: %w", err)
	}
	if len(records) < 2 {
		return masks, errEmptyTable
	}

	header := records[0]
	if len(header) < 2 {
		return masks, fmt.Errorf("collision matrix header: no columns")
	}
	cols := make([]Layer, 0, len(header)-1)
	for _, cell := range header[1:] {
		l, ok := resolveLayer(strings.TrimSpace(cell), byName)
		if !ok {
			return masks, fmt.Errorf("collision matrix header: %w: %q", errUnknownLayer, cell)
		}
		cols = append(cols, l)
	}

	for row, rec := range records[1:] {
		l, ok := resolveLayer(strings.TrimSpace(rec[0]), byName)
		if !ok {
			return masks, fmt.Errorf("collision matrix row %d: %w: %q", row+2, errUnknownLayer, rec[0])
		}
		if len(rec)-1 != len(cols) {
			return masks, fmt.Errorf("collision matrix row %d: want %d cells, got %d", row+2, len(cols), len(rec)-1)
		}
		mask := masks[l]
		for i, cell := range rec[1:] {
			switch strings.TrimSpace(cell) {
			case "1":
				mask |= cols[i].bit()
			case "0":
				mask &^= cols[i].bit()
			default:
				return masks, fmt.Errorf("collision matrix row %d col %d: want 0 or 1, got %q", row+2, i+2, cell)
			}
		}
		masks[l] = mask
	}
	return masks, nil
}
