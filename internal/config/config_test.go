package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/setevik/faulttrace/internal/event"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if !cfg.Tracer.Enabled {
		t.Error("tracer should be enabled by default")
	}
	if cfg.Buffer.Capacity != 64 {
		t.Errorf("default capacity = %d, want 64", cfg.Buffer.Capacity)
	}
	if cfg.Callbacks.Max != 8 {
		t.Errorf("default callbacks.max = %d, want 8", cfg.Callbacks.Max)
	}
	if cfg.Callbacks.Strict {
		t.Error("strict callback checking should be off by default")
	}
	if cfg.Guard.Enabled {
		t.Error("guard should be off by default")
	}
	if cfg.Guard.MaxAttempts != 1000 {
		t.Errorf("default guard.max_attempts = %d, want 1000", cfg.Guard.MaxAttempts)
	}
	if cfg.Filter.Default != "warning" {
		t.Errorf("default filter threshold = %q, want %q", cfg.Filter.Default, "warning")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level = %q, want %q", cfg.Log.Level, "info")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("loading nonexistent config should return defaults, got error: %v", err)
	}
	if cfg.Buffer.Capacity != 64 {
		t.Errorf("capacity = %d, want default 64", cfg.Buffer.Capacity)
	}
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[tracer]
enabled = true

[buffer]
capacity = 16

[callbacks]
max = 4
strict = true

[guard]
enabled = true
max_attempts = 500
spin = 20

[filter]
default = "warning"

[filter.sources]
"12" = "error"
"65534" = "fatal"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Buffer.Capacity != 16 {
		t.Errorf("buffer.capacity = %d, want 16", cfg.Buffer.Capacity)
	}
	if cfg.Callbacks.Max != 4 || !cfg.Callbacks.Strict {
		t.Errorf("callbacks = %+v, want max 4 strict", cfg.Callbacks)
	}
	if !cfg.Guard.Enabled || cfg.Guard.MaxAttempts != 500 || cfg.Guard.Spin != 20 {
		t.Errorf("guard = %+v", cfg.Guard)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}

	thresholds, err := cfg.SourceThresholds()
	if err != nil {
		t.Fatalf("SourceThresholds: %v", err)
	}
	if got := thresholds[12]; got != event.SevError {
		t.Errorf("threshold for source 12 = %v, want error", got)
	}
	if got := thresholds[65534]; got != event.SevFatal {
		t.Errorf("threshold for source 65534 = %v, want fatal", got)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte("not valid [[[ toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML, got nil")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero capacity", "[buffer]\ncapacity = 0\n"},
		{"zero callbacks", "[callbacks]\nmax = 0\n"},
		{"bad default severity", "[filter]\ndefault = \"loud\"\n"},
		{"bad source id", "[filter.sources]\n\"banana\" = \"error\"\n"},
		{"source id out of range", "[filter.sources]\n\"70000\" = \"error\"\n"},
		{"bad source severity", "[filter.sources]\n\"12\" = \"loud\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("config %q should be rejected", tt.content)
			}
		})
	}
}

func TestGlobalThreshold(t *testing.T) {
	cfg := Default()
	sev, err := cfg.GlobalThreshold()
	if err != nil {
		t.Fatalf("GlobalThreshold: %v", err)
	}
	if sev != event.SevWarning {
		t.Errorf("default global threshold = %v, want warning", sev)
	}
}
