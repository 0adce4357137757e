package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		debugOn bool
		infoOn  bool
		errorOn bool
	}{
		{"test_discards", "test", "", false, false, false},
		{"production_default", "production", "", false, true, true},
		{"production_override", "production", "error", false, false, true},
		{"development_default", "development", "", true, true, true},
		{"bad_level_ignored", "development", "loud", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core := build(tt.env, tt.level).Desugar().Core()
			if got := core.Enabled(zapcore.DebugLevel); got != tt.debugOn {
				t.Errorf("debug enabled = %v, want %v", got, tt.debugOn)
			}
			if got := core.Enabled(zapcore.InfoLevel); got != tt.infoOn {
				t.Errorf("info enabled = %v, want %v", got, tt.infoOn)
			}
			if got := core.Enabled(zapcore.ErrorLevel); got != tt.errorOn {
				t.Errorf("error enabled = %v, want %v", got, tt.errorOn)
			}
		})
	}
}

func TestForOwner(t *testing.T) {
	if ForOwner("sync", "owner-1") == nil {
		t.Fatal("expected a logger")
	}
}
