package dispatch

import (
	"testing"
	"time"

	"github.com/kilianp07/shuttle/core/model"
)

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

func full(d model.Direction, t time.Time, deadline float64) model.Event {
	return model.Event{Direction: d, RawSize: 40, ArrivalTime: t, DeadlineHours: deadline}
}

func half(d model.Direction, t time.Time, deadline float64) model.Event {
	return model.Event{Direction: d, RawSize: 20, ArrivalTime: t, DeadlineHours: deadline}
}

func pad(t time.Time) model.Event {
	return model.Event{Direction: model.DirectionNone, ArrivalTime: t}
}

// quietConfig disables rebalancing and the warm-up phases so scenarios only
// exercise the rules they target.
func quietConfig(atA, atB, steps int) Config {
	cfg := DefaultConfig()
	cfg.InitialFleetAtNodeA = atA
	cfg.InitialFleetAtNodeB = atB
	cfg.TotalSteps = steps
	cfg.BacklogWindowSteps = 0
	cfg.WarmupCutoverStep = 0
	cfg.EmptyDispatchDemandThreshold = 1000
	cfg.BacklogCountThreshold = 1000
	return cfg
}

func newSim(t *testing.T, cfg Config, evs []model.Event, opts ...Option) *Simulation {
	t.Helper()
	s, err := NewSimulation(cfg, evs, opts...)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	return s
}

func mustStep(t *testing.T, s *Simulation) bool {
	t.Helper()
	more, err := s.Step()
	if err != nil {
		t.Fatalf("step %d: %v", s.Cursor(), err)
	}
	return more
}
