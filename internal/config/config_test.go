package config

import (
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Parser.SequentialDependencies {
		t.Error("sequential dependencies should default on")
	}
	if cfg.Parser.DurationScale != 1.0 {
		t.Errorf("duration scale = %v, want 1.0", cfg.Parser.DurationScale)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %s, want info", cfg.Logging.Level)
	}
	if cfg.Output.Format != "summary" {
		t.Errorf("output format = %s, want summary", cfg.Output.Format)
	}

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("defaults must validate cleanly, got %v", errs)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := ConfigDir(); got != filepath.Join("/tmp/xdg", "planweave") {
		t.Errorf("ConfigDir = %s", got)
	}
}
