package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/collide2d/settings"
)

func main() {
	count := flag.Int("count", 300, "number of colliders to spawn")
	seed := flag.Uint64("seed", 1, "scene seed")
	dir := flag.String("settings", settings.Dir, "directory holding collision.yaml and the layer tables")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "collide-viz"})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}
	settings.Dir = *dir

	game, err := NewGame(*count, *seed, logger)
	if err != nil {
		logger.Fatal("start", "err", err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("collide2d")

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("run", "err", err)
	}
}
