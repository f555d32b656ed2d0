package main

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/system"
	"github.com/milk9111/collide2d/scene"
	"github.com/milk9111/collide2d/settings"
)

const step = 1.0 / 60

func main() {
	count := flag.Int("count", 200, "number of colliders to spawn")
	ticks := flag.Int("ticks", 600, "ticks to simulate; 0 runs until interrupted")
	mode := flag.String("mode", "", "check mode override (quadtree, layer_vs_layer)")
	seed := flag.Uint64("seed", 1, "scene seed")
	dir := flag.String("settings", settings.Dir, "directory holding collision.yaml and the layer tables")
	watch := flag.Bool("watch", false, "reload the layer tables when settings files change")
	verbose := flag.Bool("v", false, "log every collision event")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, TimeFormat: time.TimeOnly})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}
	settings.Dir = *dir

	spec, err := settings.LoadCollisionSpec()
	if err != nil {
		logger.Fatal("load settings", "err", err)
	}
	if *mode != "" {
		spec.CheckMode = *mode
	}
	collisions, err := scene.NewCollisionSystem(spec, logger)
	if err != nil {
		logger.Fatal("build collision system", "err", err)
	}

	w := ecs.NewWorld()
	w.AddSystem(system.NewMotionSystem(step, scene.Arena))
	w.AddSystem(collisions)
	w.AddSystem(&eventLog{logger: logger})

	cfg := scene.DefaultConfig()
	cfg.Count = *count
	cfg.Seed = *seed
	cfg.Layers = scene.NamedLayers(collisions.Manager().Layers())
	scene.Populate(w, cfg)

	var watcher *settings.Watcher
	if *watch {
		watcher, err = settings.NewWatcher(logger.WithPrefix("settings"), settings.Dir)
		if err != nil {
			logger.Fatal("watch settings", "dir", settings.Dir, "err", err)
		}
		defer watcher.Close()
	}

	logger.Info("simulating", "colliders", *count, "mode", collisions.Manager().CheckMode(), "ticks", *ticks)
	pace := time.NewTicker(time.Duration(step * float64(time.Second)))
	defer pace.Stop()

	var total collision.TickStats
	start := time.Now()
	for tick := 1; *ticks == 0 || tick <= *ticks; tick++ {
		if watcher != nil {
			drainWatcher(watcher, collisions.Manager(), logger)
			<-pace.C
		}
		w.Update()

		st := collisions.Manager().Stats()
		total.Candidates += st.Candidates
		total.Enter += st.Enter
		total.Exit += st.Exit
		if tick%60 == 0 {
			logger.Info("tick", "n", tick, "candidates", st.Candidates, "pairs", st.Hits,
				"enter", st.Enter, "stay", st.Stay, "exit", st.Exit)
		}
	}
	logger.Info("done", "elapsed", time.Since(start), "candidates", total.Candidates,
		"enter", total.Enter, "exit", total.Exit)
}

// drainWatcher applies pending settings changes without blocking the loop.
func drainWatcher(watcher *settings.Watcher, m *collision.Manager, logger *log.Logger) {
	for {
		select {
		case name, ok := <-watcher.Events:
			if !ok {
				return
			}
			reload(name, m, logger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher", "err", err)
		default:
			return
		}
	}
}

func reload(name string, m *collision.Manager, logger *log.Logger) {
	spec, err := settings.LoadCollisionSpec()
	if err != nil {
		logger.Warn("reload settings", "file", name, "err", err)
		return
	}
	base := filepath.Base(name)
	switch base {
	case settings.CollisionFile:
		mode, err := spec.Mode()
		if err != nil {
			logger.Warn("reload settings", "file", name, "err", err)
			return
		}
		m.SetCheckMode(mode)
		m.SetCheckModeParameters(spec.Params())
	case spec.LayersFile, spec.MatrixFile:
	default:
		return
	}

	if err := spec.ReloadLayers(m.Layers()); err != nil {
		logger.Warn("reload layer tables", "file", name, "err", err)
		return
	}
	for _, l := range scene.NamedLayers(m.Layers()) {
		logger.Debug("layer", "name", m.Layers().LayerName(l), "allowed", m.Layers().AllowedCount(l))
	}
	modified, _ := settings.ModTime(base)
	logger.Info("reloaded settings", "file", base, "modified", modified.Format(time.TimeOnly), "mode", m.CheckMode())
}

// eventLog drains collision events from the world queue.
type eventLog struct {
	logger *log.Logger
}

func (l *eventLog) Update(w *ecs.World) {
	for _, evt := range system.CollisionEvents(w.Events().Drain()) {
		l.logger.Debug("collision", "kind", evt.Kind, "entity", evt.Entity, "other", evt.Other)
	}
}
