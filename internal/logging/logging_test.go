package logging

import "testing"

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New("mowsim", level)
		if err != nil {
			t.Errorf("level %s: %v", level, err)
			continue
		}
		logger.Debugw("hello", "level", level)
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, err := New("mowsim", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewLoggerConfig(t *testing.T) {
	cfg := NewLoggerConfig()
	if cfg.Encoding != "console" {
		t.Errorf("expected console encoding, got %s", cfg.Encoding)
	}
	if len(cfg.OutputPaths) != 1 || cfg.OutputPaths[0] != "stderr" {
		t.Errorf("expected stderr output, got %v", cfg.OutputPaths)
	}
}
