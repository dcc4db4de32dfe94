package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/olivier-w/knobscope/internal/config"
	"github.com/olivier-w/knobscope/internal/param"
	"github.com/olivier-w/knobscope/internal/player"
	"github.com/olivier-w/knobscope/internal/tap"
	"github.com/olivier-w/knobscope/internal/ui"
)

// windows of history kept in the tap buffer
const tapWindows = 4

// buildModel wires the parameter tree, audio and frame source behind the TUI.
// An empty path or cfg.Mock runs on random magnitudes with no audio device.
func buildModel(path string, cfg config.Config, logger *slog.Logger) (ui.Model, error) {
	vcfg, err := cfg.Visualizer.Build()
	if err != nil {
		return ui.Model{}, err
	}
	tree, err := param.NewTree(player.Parameters(), ui.DisplayParameters(vcfg))
	if err != nil {
		return ui.Model{}, err
	}

	opts := ui.Options{
		Tree:   tree,
		Config: cfg,
		Logger: logger,
	}

	if path == "" || cfg.Mock {
		logger.Info("running on mock input")
		opts.Source = tap.NewMock(nil)
		return ui.New(opts)
	}

	info, err := os.Stat(path)
	if err != nil {
		return ui.Model{}, err
	}
	if info.IsDir() {
		return ui.Model{}, fmt.Errorf("%s is a directory", path)
	}
	if !player.IsSupported(path) {
		return ui.Model{}, fmt.Errorf("%w %s (supported: %v)", player.ErrUnsupportedFormat, filepath.Ext(path), player.SupportedExts)
	}

	bins, err := tap.ParseBinCount(cfg.Visualizer.BinCount)
	if err != nil {
		return ui.Model{}, err
	}
	buf := tap.NewRingBuffer(int(bins) * 2 * player.OutputChannels * tapWindows)
	source, err := tap.New(buf, player.OutputChannels, bins)
	if err != nil {
		return ui.Model{}, err
	}

	p, err := player.New(path, tree, buf, logger)
	if err != nil {
		return ui.Model{}, fmt.Errorf("creating player: %w", err)
	}
	opts.Player = p
	opts.Metadata = player.ReadMetadata(path)
	opts.Source = source

	m, err := ui.New(opts)
	if err != nil {
		p.Close()
		return ui.Model{}, err
	}
	return m, nil
}
