package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		want    zapcore.Level
		wantErr bool
	}{
		{"configured level", "", "warn", zapcore.WarnLevel, false},
		{"env overrides config", "debug", "error", zapcore.DebugLevel, false},
		{"invalid config level", "", "chatty", 0, true},
		{"invalid env level", "loud", "info", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLevel, tt.env)
			log, err := New(tt.level, false)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer log.Sync()
			if !log.Core().Enabled(tt.want) {
				t.Errorf("level %v should be enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && log.Core().Enabled(tt.want-1) {
				t.Errorf("level %v should be disabled", tt.want-1)
			}
		})
	}
}

func TestNew_Development(t *testing.T) {
	t.Setenv(EnvLevel, "")
	log, err := New("info", true)
	if err != nil {
		t.Fatal(err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be disabled at info level")
	}
}
