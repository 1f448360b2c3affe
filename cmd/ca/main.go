//go:build ebiten

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"lifegrid/internal/app"
	"lifegrid/pkg/sims/life"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	maxWindowW = 1280
	maxWindowH = 900
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ca:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()
	if err := cfg.Resolve(flag.CommandLine); err != nil {
		return err
	}

	logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	lc, err := cfg.LifeConfig()
	if err != nil {
		return err
	}
	sim := life.NewWithConfig(lc)
	ctrl := app.NewController(sim, cfg.IntervalMs, logger)
	defer ctrl.Close()

	if cfg.Pattern != "" {
		if _, err := ctrl.LoadFile(cfg.Pattern); err != nil {
			return err
		}
	}

	game, err := app.New(ctrl, cfg, logger)
	if err != nil {
		return err
	}
	w, h := game.WindowSize(maxWindowW, maxWindowH)
	ebiten.SetWindowTitle(fmt.Sprintf("lifegrid - %s %dx%d", sim.Name(), lc.Width, lc.Height))
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	logger.Info("Starting GUI.", "width", lc.Width, "height", lc.Height, "rule", sim.ActiveRule().Name)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
