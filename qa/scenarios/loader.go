// Package scenarios runs small hand-written event sequences described in
// YAML and checks the outcome of the simulation.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/shuttle/core/model"
)

// EventDef is one input record. At is a clock time on the scenario date.
type EventDef struct {
	Direction string  `yaml:"direction"`
	Size      float64 `yaml:"size"`
	At        string  `yaml:"at"`
	Deadline  float64 `yaml:"deadline"`
}

// ToModel converts the definition using day as the calendar date.
func (e EventDef) ToModel(day time.Time) (model.Event, error) {
	dir, err := model.ParseDirection(e.Direction)
	if err != nil {
		return model.Event{}, err
	}
	clock, err := time.Parse("15:04", e.At)
	if err != nil {
		return model.Event{}, fmt.Errorf("event time %q: %w", e.At, err)
	}
	at := day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
	return model.Event{Direction: dir, RawSize: e.Size, ArrivalTime: at, DeadlineHours: e.Deadline}, nil
}

type Loads struct {
	Full  int `yaml:"full"`
	Half  int `yaml:"half"`
	Empty int `yaml:"empty"`
}

type Tally struct {
	Delivered int `yaml:"delivered"`
	InTransit int `yaml:"in_transit"`
	Pending   int `yaml:"pending"`
	Missed    int `yaml:"missed"`
	Excluded  int `yaml:"excluded"`
}

type Counts struct {
	IdleA     int `yaml:"idle_a"`
	IdleB     int `yaml:"idle_b"`
	InTransit int `yaml:"in_transit"`
}

type Expected struct {
	Loads Loads  `yaml:"loads"`
	Tally Tally  `yaml:"tally"`
	Final Counts `yaml:"final"`
}

type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Date        string         `yaml:"date"`
	Simulation  map[string]any `yaml:"simulation"`
	Events      []EventDef     `yaml:"events"`
	Expected    Expected       `yaml:"expected"`
}

// Day returns the scenario date, 2024-03-04 when unset.
func (s Scenario) Day() (time.Time, error) {
	if s.Date == "" {
		return time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", s.Date)
}

// Sequence converts the event definitions.
func (s Scenario) Sequence() ([]model.Event, error) {
	day, err := s.Day()
	if err != nil {
		return nil, err
	}
	evs := make([]model.Event, len(s.Events))
	for i, e := range s.Events {
		if evs[i], err = e.ToModel(day); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}
	return evs, nil
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
