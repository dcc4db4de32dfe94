package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/olivier-w/knobscope/internal/knob"
	"github.com/olivier-w/knobscope/internal/visualizer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knobscope.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Sanitize(); err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if cfg.FrameInterval() != 50*time.Millisecond {
		t.Fatalf("expected 50ms frames, got %v", cfg.FrameInterval())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
layout = "middle"
frame_rate = 30

[visualizer]
bin_count = 256
min_db = -120
max_db = -20

[knobs.volume]
preset = 0.5
glide_ms = 400
sensitivity_y = 0.02
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout != "middle" || cfg.FrameRate != 30 {
		t.Fatalf("unexpected top level %+v", cfg)
	}
	if cfg.Visualizer.Bars != visualizer.MaxBarCount {
		t.Fatalf("expected bars derived from bin count, got %d", cfg.Visualizer.Bars)
	}
	vc, err := cfg.Visualizer.Build()
	if err != nil {
		t.Fatal(err)
	}
	if vc.MinAmplitudeDB() != -120 || vc.MaxAmplitudeDB() != -20 {
		t.Fatalf("unexpected bounds %v..%v", vc.MinAmplitudeDB(), vc.MaxAmplitudeDB())
	}

	kc := cfg.Knob("volume").Apply(knob.DefaultConfig())
	if kc.Preset != 0.5 || kc.GlideDuration != 400*time.Millisecond || kc.SensitivityY != 0.02 {
		t.Fatalf("unexpected knob config %+v", kc)
	}
	if kc.SensitivityX != knob.DefaultSensitivity || kc.GlideSteps != knob.DefaultGlideSteps {
		t.Fatalf("expected untouched fields to keep defaults, got %+v", kc)
	}
}

func TestLoadRejectsEqualBounds(t *testing.T) {
	path := writeConfig(t, "[visualizer]\nmin_db = -50\nmax_db = -50\n")
	_, err := Load(path)
	if !errors.Is(err, visualizer.ErrInvalidConfig) {
		t.Fatalf("expected visualizer.ErrInvalidConfig, got %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "layuot = \"linear\"\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "layuot") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestSanitizeRejectsBadKnob(t *testing.T) {
	cfg := Default()
	cfg.Knobs["pan"] = Knob{GlideSteps: -1}
	if err := cfg.Sanitize(); !errors.Is(err, knob.ErrInvalidConfig) {
		t.Fatalf("expected knob.ErrInvalidConfig, got %v", err)
	}
}

func TestSanitizeRejectsLayoutAndBins(t *testing.T) {
	cfg := Default()
	cfg.Layout = "circular"
	if err := cfg.Sanitize(); err == nil {
		t.Fatal("expected layout error")
	}
	cfg = Default()
	cfg.Visualizer.BinCount = 100
	if err := cfg.Sanitize(); err == nil {
		t.Fatal("expected bin count error")
	}
}
