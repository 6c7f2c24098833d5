package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/setevik/faulttrace/internal/config"
	"github.com/setevik/faulttrace/internal/event"
	"github.com/setevik/faulttrace/internal/filter"
	"github.com/setevik/faulttrace/internal/tracer"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
workers: 2
filters:
  - source: global
    min: warning
  - source: "12"
    min: error
reports:
  - class: error
    source: 12
    instance: 1
    operation: 10
    condition: 3
    repeat: 5
  - class: transient
    source: 40
    operation: 2
    condition: 1
`)

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	if sc.Workers != 2 {
		t.Errorf("Workers = %d, want 2", sc.Workers)
	}
	if len(sc.Filters) != 2 || len(sc.Reports) != 2 {
		t.Fatalf("parsed %d filters, %d reports", len(sc.Filters), len(sc.Reports))
	}

	src, min, err := sc.Filters[0].resolve()
	if err != nil {
		t.Fatal(err)
	}
	if src != filter.SourceGlobal || min != event.SevWarning {
		t.Errorf("global filter = %v/%v", src, min)
	}

	src, min, err = sc.Filters[1].resolve()
	if err != nil {
		t.Fatal(err)
	}
	if src != 12 || min != event.SevError {
		t.Errorf("source filter = %v/%v", src, min)
	}

	class, err := sc.Reports[1].class()
	if err != nil {
		t.Fatal(err)
	}
	if class != event.ClassTransient {
		t.Errorf("class = %v, want transient", class)
	}

	sig, err := sc.Reports[0].signature()
	if err != nil {
		t.Fatal(err)
	}
	want := event.Signature{Source: 12, Instance: 1, Operation: 10, Condition: 3}
	if sig != want {
		t.Errorf("signature = %v, want %v", sig, want)
	}

	if sc.Reports[1].repeats() != 1 {
		t.Errorf("default repeat = %d, want 1", sc.Reports[1].repeats())
	}
}

func TestLoadScenarioRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty reports", "workers: 1\n"},
		{"bad class", "reports:\n  - class: explosive\n    source: 1\n"},
		{"source out of range", "reports:\n  - class: error\n    source: 70000\n"},
		{"instance out of range", "reports:\n  - class: error\n    source: 1\n    instance: 300\n"},
		{"bad filter severity", "filters:\n  - source: global\n    min: loud\nreports:\n  - source: 1\n"},
		{"bad filter source", "filters:\n  - source: everything\n    min: error\nreports:\n  - source: 1\n"},
		{"not yaml", ": [ not yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, tt.content)
			if _, err := LoadScenario(path); err == nil {
				t.Errorf("scenario %q should be rejected", tt.content)
			}
		})
	}
}

func TestSimulate(t *testing.T) {
	path := writeScenario(t, `
filters:
  - source: "99"
    min: fatal
reports:
  - class: error
    source: 1
    operation: 1
    condition: 1
    repeat: 3
  - class: runtime
    source: 2
    operation: 2
    condition: 2
  - class: transient
    source: 3
    operation: 3
    condition: 3
  - class: error
    source: 99
    operation: 1
    condition: 1
`)

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	rec, err := tracer.FromConfig(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	dropped, err := simulate(rec, sc)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0 in sequential run", dropped)
	}

	stats, err := rec.Statistics()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 5 {
		t.Errorf("Total = %d, want 5", stats.Total)
	}
	if stats.Unique != 3 {
		t.Errorf("Unique = %d, want 3", stats.Unique)
	}
	if stats.RuntimeErrors != 1 || stats.TransientFaults != 1 {
		t.Errorf("class counters = %d/%d, want 1/1", stats.RuntimeErrors, stats.TransientFaults)
	}
	if stats.Suppressed != 1 {
		t.Errorf("Suppressed = %d, want 1 (source 99 filtered)", stats.Suppressed)
	}

	var out bytes.Buffer
	printDigest(&out, rec, dropped)
	if !bytes.Contains(out.Bytes(), []byte("accepted     5")) {
		t.Errorf("digest missing accepted count:\n%s", out.String())
	}
}
