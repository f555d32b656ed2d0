package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/collision"
	"gopkg.in/yaml.v3"
)

// CollisionFile is the default collision settings file name.
const CollisionFile = "collision.yaml"

var (
	ErrLayerTable  = errors.New("settings: layer table rejected")
	ErrMatrixTable = errors.New("settings: collision matrix rejected")
)

type CollisionSpec struct {
	CheckMode   string           `yaml:"check_mode"`
	QuadTree    QuadTreeSpec     `yaml:"quadtree"`
	WorldBounds BoundsSpec       `yaml:"world_bounds"`
	Parallelism int              `yaml:"parallelism"`
	LayersFile  string           `yaml:"layers_file"`
	MatrixFile  string           `yaml:"matrix_file"`
	Matrix      []MatrixRuleSpec `yaml:"matrix"`
}

type QuadTreeSpec struct {
	MaxObjects int `yaml:"max_objects"`
	// MaxDepth is a pointer so an explicit 0 (never split) differs from unset.
	MaxDepth *int `yaml:"max_depth"`
}

type BoundsSpec struct {
	Fixed  bool    `yaml:"fixed"`
	Left   float64 `yaml:"left"`
	Bottom float64 `yaml:"bottom"`
	Right  float64 `yaml:"right"`
	Top    float64 `yaml:"top"`
}

// MatrixRuleSpec overrides one matrix cell in both directions after the
// tables are loaded. A and B are layer names or ids.
type MatrixRuleSpec struct {
	A     string `yaml:"a"`
	B     string `yaml:"b"`
	Allow bool   `yaml:"allow"`
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("settings: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("settings: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

func LoadCollisionSpec() (*CollisionSpec, error) {
	spec, err := LoadSpec[CollisionSpec](CollisionFile)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// Mode parses CheckMode. An empty value selects the quadtree.
func (s *CollisionSpec) Mode() (collision.CheckMode, error) {
	if s == nil || s.CheckMode == "" {
		return collision.CheckQuadTree, nil
	}
	mode, err := collision.ParseCheckMode(s.CheckMode)
	if err != nil {
		return mode, fmt.Errorf("settings: check_mode: %w", err)
	}
	return mode, nil
}

func (s *CollisionSpec) Params() collision.CheckParams {
	p := collision.DefaultCheckParams()
	if s == nil {
		return p
	}
	if s.QuadTree.MaxObjects > 0 {
		p.MaxObjects = s.QuadTree.MaxObjects
	}
	if d := s.QuadTree.MaxDepth; d != nil && *d >= 0 {
		p.MaxDepth = *d
	}
	p.Parallelism = s.Parallelism
	if b := s.WorldBounds; b.Fixed && b.Right > b.Left && b.Top > b.Bottom {
		p.FixedBounds = true
		p.Bounds = cp.BB{L: b.Left, B: b.Bottom, R: b.Right, T: b.Top}
	}
	return p
}

// ManagerOptions converts the spec into collision.NewManager options.
func (s *CollisionSpec) ManagerOptions() ([]collision.ManagerOption, error) {
	mode, err := s.Mode()
	if err != nil {
		return nil, err
	}
	return []collision.ManagerOption{
		collision.WithCheckMode(mode),
		collision.WithCheckParams(s.Params()),
	}, nil
}

// ApplyLayers loads the layer table, then the collision matrix, then the
// inline rules into lm. Empty file names are skipped. A rejected table
// leaves lm as the loader left it.
func (s *CollisionSpec) ApplyLayers(lm *collision.LayerManager) error {
	if s == nil || lm == nil {
		return nil
	}
	if s.LayersFile != "" {
		data, err := Load(s.LayersFile)
		if err != nil {
			return fmt.Errorf("settings: load %s: %w", s.LayersFile, err)
		}
		if !lm.LoadLayers(bytes.NewReader(data)) {
			return fmt.Errorf("%w: %s", ErrLayerTable, s.LayersFile)
		}
	}
	if s.MatrixFile != "" {
		data, err := Load(s.MatrixFile)
		if err != nil {
			return fmt.Errorf("settings: load %s: %w", s.MatrixFile, err)
		}
		if !lm.LoadCollisionMatrix(bytes.NewReader(data)) {
			return fmt.Errorf("%w: %s", ErrMatrixTable, s.MatrixFile)
		}
	}
	for i, rule := range s.Matrix {
		if !lm.SetByName(rule.A, rule.B, rule.Allow) {
			return fmt.Errorf("settings: matrix rule %d: unknown layer in %q/%q", i, rule.A, rule.B)
		}
	}
	return nil
}

// ReloadLayers re-applies the spec to a live manager. The tables and rules
// are validated on a scratch manager first, so a bad edit leaves lm
// untouched. The matrix is then rebuilt from all-collide, so rules removed
// from the yaml do not linger.
func (s *CollisionSpec) ReloadLayers(lm *collision.LayerManager) error {
	if s == nil || lm == nil {
		return nil
	}
	scratch := collision.NewLayerManager(collision.WithLayerLogger(log.New(io.Discard)))
	if err := s.ApplyLayers(scratch); err != nil {
		return err
	}
	lm.ResetMatrix()
	return s.ApplyLayers(lm)
}
