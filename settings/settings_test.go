package settings

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/milk9111/collide2d/collision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useDir points the disk override at dir for the duration of the test.
func useDir(t *testing.T, dir string) {
	t.Helper()
	prev := Dir
	Dir = dir
	t.Cleanup(func() { Dir = prev })
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func quietLayers() *collision.LayerManager {
	return collision.NewLayerManager(collision.WithLayerLogger(log.New(io.Discard)))
}

func TestEmbeddedDefaults(t *testing.T) {
	useDir(t, t.TempDir())

	spec, err := LoadCollisionSpec()
	require.NoError(t, err)
	mode, err := spec.Mode()
	require.NoError(t, err)
	assert.Equal(t, collision.CheckQuadTree, mode)
	assert.Equal(t, "layers.csv", spec.LayersFile)

	lm := quietLayers()
	require.NoError(t, spec.ApplyLayers(lm))

	player, ok := lm.LayerByName("Player")
	require.True(t, ok)
	projectile, ok := lm.LayerByName("Projectile")
	require.True(t, ok)
	trigger, ok := lm.LayerByName("Trigger")
	require.True(t, ok)

	assert.False(t, lm.Interacts(player, projectile))
	assert.True(t, lm.Interacts(player, collision.LayerDefault))
	assert.False(t, lm.CanCollide(trigger, trigger), "inline rule applies after the matrix")
	assert.True(t, lm.CanCollide(20, 21), "layers outside the table keep colliding")
}

func TestDiskOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	useDir(t, dir)
	writeFile(t, dir, CollisionFile, `
check_mode: layer_vs_layer
quadtree:
  max_objects: 3
world_bounds:
  fixed: true
  left: -10
  bottom: -10
  right: 10
  top: 10
parallelism: 2
`)

	_, ok := ModTime(CollisionFile)
	assert.True(t, ok)
	_, ok = ModTime("layers.csv")
	assert.False(t, ok, "embedded-only files have no disk mod time")

	spec, err := LoadCollisionSpec()
	require.NoError(t, err)
	opts, err := spec.ManagerOptions()
	require.NoError(t, err)

	m := collision.NewManager(nil, quietLayers(), opts...)
	assert.Equal(t, collision.CheckLayerVsLayer, m.CheckMode())
	p := m.CheckParams()
	assert.Equal(t, 3, p.MaxObjects)
	assert.Equal(t, collision.DefaultMaxDepth, p.MaxDepth)
	assert.Equal(t, 2, p.Parallelism)
	assert.True(t, p.FixedBounds)
	assert.Equal(t, 10.0, p.Bounds.R)

	// The prefix form resolves to the same file.
	data, err := Load("settings/" + CollisionFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "layer_vs_layer")
}

func TestSpecErrors(t *testing.T) {
	cases := []struct {
		name  string
		files map[string]string
		check func(t *testing.T, spec *CollisionSpec, err error)
	}{
		{
			name:  "bad_yaml",
			files: map[string]string{CollisionFile: "check_mode: [unterminated"},
			check: func(t *testing.T, _ *CollisionSpec, err error) {
				assert.ErrorContains(t, err, "settings: unmarshal")
			},
		},
		{
			name:  "bad_mode",
			files: map[string]string{CollisionFile: "check_mode: octree\n"},
			check: func(t *testing.T, spec *CollisionSpec, err error) {
				require.NoError(t, err)
				_, err = spec.Mode()
				assert.ErrorContains(t, err, "check_mode")
			},
		},
		{
			name: "bad_matrix",
			files: map[string]string{
				CollisionFile: "layers_file: l.csv\nmatrix_file: m.csv\n",
				"l.csv":       "Default\nPlayer\n",
				"m.csv":       ",Default,Player\nDefault,1,2\nPlayer,1,1\n",
			},
			check: func(t *testing.T, spec *CollisionSpec, err error) {
				require.NoError(t, err)
				lm := quietLayers()
				assert.ErrorIs(t, spec.ApplyLayers(lm), ErrMatrixTable)
				_, ok := lm.LayerByName("Player")
				assert.True(t, ok, "the layer table loaded before the matrix failed")
			},
		},
		{
			name: "bad_layers",
			files: map[string]string{
				CollisionFile: "layers_file: l.csv\n",
				"l.csv":       "0,A\n0,B\n",
			},
			check: func(t *testing.T, spec *CollisionSpec, err error) {
				require.NoError(t, err)
				assert.ErrorIs(t, spec.ApplyLayers(quietLayers()), ErrLayerTable)
			},
		},
		{
			name:  "missing_table",
			files: map[string]string{CollisionFile: "matrix_file: nope.csv\n"},
			check: func(t *testing.T, spec *CollisionSpec, err error) {
				require.NoError(t, err)
				assert.ErrorContains(t, spec.ApplyLayers(quietLayers()), "nope.csv")
			},
		},
		{
			name: "unknown_rule_layer",
			files: map[string]string{
				CollisionFile: "matrix:\n  - a: Default\n    b: Ghost\n",
			},
			check: func(t *testing.T, spec *CollisionSpec, err error) {
				require.NoError(t, err)
				assert.ErrorContains(t, spec.ApplyLayers(quietLayers()), "Ghost")
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			useDir(t, dir)
			for name, body := range tc.files {
				writeFile(t, dir, name, body)
			}
			spec, err := LoadCollisionSpec()
			tc.check(t, spec, err)
		})
	}
}

func TestParamsIgnoresEmptyBounds(t *testing.T) {
	spec := &CollisionSpec{WorldBounds: BoundsSpec{Fixed: true}}
	p := spec.Params()
	assert.False(t, p.FixedBounds)
	assert.Equal(t, collision.DefaultCheckParams().MaxObjects, p.MaxObjects)

	var nilSpec *CollisionSpec
	mode, err := nilSpec.Mode()
	require.NoError(t, err)
	assert.Equal(t, collision.CheckQuadTree, mode)
	assert.NoError(t, nilSpec.ApplyLayers(quietLayers()))
}

func TestIsSettingsFile(t *testing.T) {
	for path, want := range map[string]bool{
		"collision.yaml":  true,
		"a/b/layers.CSV":  true,
		"other.yml":       true,
		"notes.txt":       false,
		"collision.yaml~": false,
		"matrix.csv.swp":  false,
	} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, want, IsSettingsFile(path))
		})
	}
}

func TestWatcherReportsTableChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(log.New(io.Discard), dir)
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "layers.csv", "Default\n")

	select {
	case name := <-w.Events:
		assert.Equal(t, "layers.csv", filepath.Base(name))
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for layers.csv")
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "Close is idempotent")
}

func TestParamsMaxDepth(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want int
	}{
		{"unset", "quadtree:\n  max_objects: 4\n", collision.DefaultMaxDepth},
		{"zero_never_splits", "quadtree:\n  max_depth: 0\n", 0},
		{"explicit", "quadtree:\n  max_depth: 3\n", 3},
		{"negative_is_default", "quadtree:\n  max_depth: -1\n", collision.DefaultMaxDepth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			useDir(t, dir)
			writeFile(t, dir, CollisionFile, tc.yaml)

			spec, err := LoadCollisionSpec()
			require.NoError(t, err)
			opts, err := spec.ManagerOptions()
			require.NoError(t, err)
			m := collision.NewManager(nil, quietLayers(), opts...)
			assert.Equal(t, tc.want, m.CheckParams().MaxDepth)
		})
	}
}

func TestReloadLayersDropsRemovedRules(t *testing.T) {
	dir := t.TempDir()
	useDir(t, dir)
	writeFile(t, dir, CollisionFile, "matrix:\n  - a: \"1\"\n    b: \"2\"\n    allow: false\n")

	spec, err := LoadCollisionSpec()
	require.NoError(t, err)
	lm := quietLayers()
	require.NoError(t, spec.ApplyLayers(lm))
	require.False(t, lm.Interacts(1, 2))

	writeFile(t, dir, CollisionFile, "matrix:\n  - a: \"3\"\n    b: \"4\"\n    allow: false\n")
	spec, err = LoadCollisionSpec()
	require.NoError(t, err)
	require.NoError(t, spec.ReloadLayers(lm))
	assert.True(t, lm.Interacts(1, 2), "rule removed from the yaml is undone")
	assert.False(t, lm.Interacts(3, 4))

	writeFile(t, dir, CollisionFile, "matrix:\n  - a: \"3\"\n    b: Ghost\n")
	spec, err = LoadCollisionSpec()
	require.NoError(t, err)
	assert.Error(t, spec.ReloadLayers(lm))
	assert.False(t, lm.Interacts(3, 4), "a rejected reload leaves the live matrix alone")
	assert.Equal(t, int(collision.LayerCount)-1, lm.AllowedCount(3))
}
