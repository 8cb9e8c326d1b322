package model

import (
	"fmt"
	"time"
)

// SizeClass classifies a trip by the cargo it carries.
type SizeClass int

const (
	SizeEmpty SizeClass = iota
	SizeHalf
	SizeFull
)

func (s SizeClass) String() string {
	switch s {
	case SizeEmpty:
		return "empty"
	case SizeHalf:
		return "half"
	case SizeFull:
		return "full"
	default:
		return "unknown"
	}
}

// Classify maps a raw cargo length to Full or Half using cutoff.
func Classify(rawSize, cutoff float64) SizeClass {
	if rawSize >= cutoff {
		return SizeFull
	}
	return SizeHalf
}

// ShipmentStatus is the lifecycle state of a shipment. Transitions only move
// forward: Pending to Dispatched, Missed or an Excluded state, and
// Dispatched to Delivered.
type ShipmentStatus int

const (
	StatusPending ShipmentStatus = iota
	StatusDispatched
	StatusDelivered
	StatusMissed
	StatusExcludedWarmup
	StatusExcludedPadding
)

func (s ShipmentStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDispatched:
		return "dispatched"
	case StatusDelivered:
		return "delivered"
	case StatusMissed:
		return "missed"
	case StatusExcludedWarmup:
		return "excluded_warmup"
	case StatusExcludedPadding:
		return "excluded_padding"
	default:
		return "unknown"
	}
}

// Excluded reports whether the status removes the shipment from statistics.
func (s ShipmentStatus) Excluded() bool {
	return s == StatusExcludedWarmup || s == StatusExcludedPadding
}

// Event is one record of the ordered input sequence: a shipment arriving at
// its origin node.
type Event struct {
	Direction     Direction `json:"direction" yaml:"direction"`
	RawSize       float64   `json:"raw_size" yaml:"raw_size"`
	ArrivalTime   time.Time `json:"arrival_time" yaml:"arrival_time"`
	DeadlineHours float64   `json:"deadline_hours" yaml:"deadline_hours"`
}

// Padding reports whether the event is a synthetic trailer event.
func (e Event) Padding() bool { return !e.Direction.Real() }

// Shipment is the per-event state owned by the shipment ledger. Its identity
// is its position in the input sequence.
type Shipment struct {
	Index int
	Event
	Status ShipmentStatus
	// Departure is the time the shipment leaves its origin, mount time included.
	Departure time.Time
	// Arrival is set when the carrying trip completes.
	Arrival time.Time
	// Excess is the slack left at delivery in hours.
	Excess  float64
	Vehicle string
}

// RemainingDeadline returns the deadline left at now, in hours.
func (s Shipment) RemainingDeadline(now time.Time) float64 {
	return s.DeadlineHours - Hours(now.Sub(s.ArrivalTime))
}

// Hours converts a duration to fractional hours.
func Hours(d time.Duration) float64 { return d.Hours() }

// MarshalText encodes the size class by name.
func (s SizeClass) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes "empty", "half" or "full".
func (s *SizeClass) UnmarshalText(b []byte) error {
	switch string(b) {
	case "empty":
		*s = SizeEmpty
	case "half":
		*s = SizeHalf
	case "full":
		*s = SizeFull
	default:
		return fmt.Errorf("unknown size class %q", string(b))
	}
	return nil
}

// MarshalText encodes the status by name.
func (s ShipmentStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
