package main

import (
	"fmt"
	"os"

	"fortio.org/safecast"
	"gopkg.in/yaml.v3"

	"github.com/setevik/faulttrace/internal/event"
	"github.com/setevik/faulttrace/internal/filter"
)

// Scenario is a YAML description of a simulated fault workload: filter
// setup followed by a sequence of reports.
type Scenario struct {
	// Workers is how many goroutines feed reports concurrently. Zero or
	// one means sequential.
	Workers int `yaml:"workers"`

	Filters []ScenarioFilter `yaml:"filters"`
	Reports []ScenarioReport `yaml:"reports"`
}

// ScenarioFilter seeds one filter entry before the run. Source "global"
// configures the fallback threshold.
type ScenarioFilter struct {
	Source string `yaml:"source"`
	Min    string `yaml:"min"`
}

// ScenarioReport is one report, optionally repeated.
type ScenarioReport struct {
	Class     string `yaml:"class"`
	Source    uint64 `yaml:"source"`
	Instance  uint64 `yaml:"instance"`
	Operation uint64 `yaml:"operation"`
	Condition uint64 `yaml:"condition"`
	Repeat    int    `yaml:"repeat"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}

	if len(sc.Reports) == 0 {
		return nil, fmt.Errorf("scenario %s has no reports", path)
	}
	for i := range sc.Filters {
		if _, _, err := sc.Filters[i].resolve(); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", path, err)
		}
	}
	for i := range sc.Reports {
		if _, err := sc.Reports[i].class(); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", path, err)
		}
		if _, err := sc.Reports[i].signature(); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", path, err)
		}
	}

	return &sc, nil
}

func (f *ScenarioFilter) resolve() (event.SourceID, event.Severity, error) {
	min, err := event.ParseSeverity(f.Min)
	if err != nil {
		return 0, 0, fmt.Errorf("filter for source %q: %w", f.Source, err)
	}
	if f.Source == "global" {
		return filter.SourceGlobal, min, nil
	}
	var id uint64
	if _, err := fmt.Sscanf(f.Source, "%d", &id); err != nil {
		return 0, 0, fmt.Errorf("filter source %q is not a number or \"global\"", f.Source)
	}
	src, err := safecast.Conv[uint16](id)
	if err != nil {
		return 0, 0, fmt.Errorf("filter source %q out of range: %w", f.Source, err)
	}
	return event.SourceID(src), min, nil
}

func (r *ScenarioReport) class() (event.Class, error) {
	switch r.Class {
	case "", "error":
		return event.ClassDevelopment, nil
	case "runtime":
		return event.ClassRuntime, nil
	case "transient":
		return event.ClassTransient, nil
	default:
		return 0, fmt.Errorf("unknown report class %q", r.Class)
	}
}

func (r *ScenarioReport) signature() (event.Signature, error) {
	src, err := safecast.Conv[uint16](r.Source)
	if err != nil {
		return event.Signature{}, fmt.Errorf("report source %d out of range: %w", r.Source, err)
	}
	inst, err := safecast.Conv[uint8](r.Instance)
	if err != nil {
		return event.Signature{}, fmt.Errorf("report instance %d out of range: %w", r.Instance, err)
	}
	op, err := safecast.Conv[uint8](r.Operation)
	if err != nil {
		return event.Signature{}, fmt.Errorf("report operation %d out of range: %w", r.Operation, err)
	}
	cond, err := safecast.Conv[uint8](r.Condition)
	if err != nil {
		return event.Signature{}, fmt.Errorf("report condition %d out of range: %w", r.Condition, err)
	}
	return event.Signature{
		Source:    event.SourceID(src),
		Instance:  event.InstanceID(inst),
		Operation: event.OperationID(op),
		Condition: event.ConditionID(cond),
	}, nil
}

func (r *ScenarioReport) repeats() int {
	if r.Repeat < 1 {
		return 1
	}
	return r.Repeat
}
