package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/knobscope/internal/config"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: knobscope [flags] [file]\n\nWith no file, knobscope runs on mock input.\n\n")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "TOML settings `file`")
	bars := flag.Int("bars", 0, "number of spectrum bars (default derived from the bin count)")
	mock := flag.Bool("mock", false, "visualize random magnitudes instead of audio")
	middle := flag.Bool("middle", false, "start with the mirrored middle layout")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() > 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath, *bars, *mock, *middle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(os.Getenv("KNOBSCOPE_LOG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	model, err := buildModel(flag.Arg(0), cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		logger.Error("program exited", "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the optional settings file and layers the flags over it.
func loadConfig(path string, bars int, mock, middle bool) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	if bars > 0 {
		cfg.Visualizer.Bars = bars
	}
	if mock {
		cfg.Mock = true
	}
	if middle {
		cfg.Layout = "middle"
	}
	if err := cfg.Sanitize(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger writes to path when set. The TUI owns the terminal, so without
// a path everything is discarded.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := tea.LogToFile(path, "knobscope")
	if err != nil {
		return nil, nil, fmt.Errorf("opening log: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})), func() { f.Close() }, nil
}
