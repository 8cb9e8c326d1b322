package metrics

import (
	"time"

	"github.com/kilianp07/shuttle/core/model"
)

// StepEvent is the fleet state observed at one simulation step.
type StepEvent struct {
	RunID     string
	Step      int
	Time      time.Time
	IdleA     int
	IdleB     int
	InTransit int
	Backlog   model.DirectionCounts
	Demand    model.DirectionCounts
}

// MetricsSink records simulation state for observability purposes.
type MetricsSink interface {
	RecordStep(ev StepEvent) error
}

// TripEvent describes a vehicle leaving a node.
type TripEvent struct {
	RunID     string
	Step      int
	VehicleID string
	Origin    model.Node
	Load      model.SizeClass
	Cargo     model.Cargo
	// Missed counts the carried shipments that cannot make their deadline.
	Missed int
	Time   time.Time
}

// TripRecorder records dispatched trips.
type TripRecorder interface {
	RecordTrip(ev TripEvent) error
}

// SummaryEvent closes a run.
type SummaryEvent struct {
	RunID      string
	Steps      int
	FullTrips  int
	HalfTrips  int
	EmptyTrips int
	Delivered  int
	InTransit  int
	Pending    int
	Missed     int
	Excluded   int
	Time       time.Time
}

// SummaryRecorder records end-of-run summaries.
type SummaryRecorder interface {
	RecordSummary(ev SummaryEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordStep(StepEvent) error       { return nil }
func (NopSink) RecordTrip(TripEvent) error       { return nil }
func (NopSink) RecordSummary(SummaryEvent) error { return nil }
