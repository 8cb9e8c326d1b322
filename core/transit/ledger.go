package transit

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/shuttle/core/model"
)

// ErrNoIdleVehicle is returned when a dispatch is attempted from a node with
// no idle capacity.
var ErrNoIdleVehicle = errors.New("transit: no idle vehicle at origin")

// VehicleTracker receives vehicle state changes.
type VehicleTracker interface {
	MarkDispatched(id string, dest model.Node, at time.Time, load model.SizeClass, cargo model.Cargo) error
	MarkArrived(id string, at time.Time) error
}

// ArrivalRecorder receives the arrival of carried shipments.
type ArrivalRecorder interface {
	RecordArrival(ref int, at time.Time) error
}

// Record is a trip on the corridor.
type Record struct {
	VehicleID   string
	Origin      model.Node
	Destination model.Node
	Departure   time.Time
	// Arrival is set once the trip has been settled.
	Arrival time.Time
	Load    model.SizeClass
	Cargo   model.Cargo
}

// FleetCounts is a snapshot of where the fleet is.
type FleetCounts struct {
	IdleA     int `json:"idle_a"`
	IdleB     int `json:"idle_b"`
	InTransit int `json:"in_transit"`
}

// Total returns the fleet size implied by the snapshot.
func (c FleetCounts) Total() int { return c.IdleA + c.IdleB + c.InTransit }

// Idle returns the idle count at n.
func (c FleetCounts) Idle(n model.Node) int {
	if n == model.NodeA {
		return c.IdleA
	}
	return c.IdleB
}

// Ledger owns the idle counts per node and the trips in progress. It keeps
// idle A + idle B + active trips equal to the fleet size.
type Ledger struct {
	idle      [2]int
	active    []Record
	vehicles  VehicleTracker
	shipments ArrivalRecorder
}

// NewLedger creates a ledger with the initial idle counts.
func NewLedger(idleA, idleB int, vehicles VehicleTracker, shipments ArrivalRecorder) *Ledger {
	return &Ledger{idle: [2]int{idleA, idleB}, vehicles: vehicles, shipments: shipments}
}

// Idle returns the number of idle vehicles at n.
func (l *Ledger) Idle(n model.Node) int { return l.idle[n] }

// IdleTotal returns the idle vehicles at both nodes.
func (l *Ledger) IdleTotal() int { return l.idle[model.NodeA] + l.idle[model.NodeB] }

// InTransit returns the number of trips in progress.
func (l *Ledger) InTransit() int { return len(l.active) }

// Counts returns a snapshot of the fleet distribution.
func (l *Ledger) Counts() FleetCounts {
	return FleetCounts{IdleA: l.idle[model.NodeA], IdleB: l.idle[model.NodeB], InTransit: len(l.active)}
}

// Active returns a copy of the trips in progress in dispatch order.
func (l *Ledger) Active() []Record {
	return append([]Record(nil), l.active...)
}

// CountInTransitTo returns the trips heading to dest.
func (l *Ledger) CountInTransitTo(dest model.Node) int {
	n := 0
	for _, r := range l.active {
		if r.Destination == dest {
			n++
		}
	}
	return n
}

// Dispatch starts a trip for vehicleID from origin to the opposite node.
func (l *Ledger) Dispatch(vehicleID string, origin model.Node, now time.Time, load model.SizeClass, cargo model.Cargo) (Record, error) {
	if l.idle[origin] <= 0 {
		return Record{}, fmt.Errorf("%w %s", ErrNoIdleVehicle, origin)
	}
	rec := Record{
		VehicleID:   vehicleID,
		Origin:      origin,
		Destination: origin.Opposite(),
		Departure:   now,
		Load:        load,
		Cargo:       cargo,
	}
	if err := l.vehicles.MarkDispatched(vehicleID, rec.Destination, now, load, cargo); err != nil {
		return Record{}, err
	}
	l.idle[origin]--
	l.active = append(l.active, rec)
	return rec, nil
}

// SettleArrivals completes every trip whose expected duration has elapsed at
// now. Trips still on the road keep their order. Settling twice at the same
// instant is a no-op the second time.
func (l *Ledger) SettleArrivals(now time.Time) ([]Record, error) {
	if len(l.active) == 0 {
		return nil, nil
	}
	var done []Record
	remaining := l.active[:0]
	for _, r := range l.active {
		elapsed := model.Hours(now.Sub(r.Departure))
		if !HasArrived(elapsed, r.Load, r.Departure) {
			remaining = append(remaining, r)
			continue
		}
		r.Arrival = now
		done = append(done, r)
	}
	l.active = remaining
	for _, r := range done {
		l.idle[r.Destination]++
		if err := l.vehicles.MarkArrived(r.VehicleID, now); err != nil {
			return done, err
		}
		for _, ref := range r.Cargo.Refs() {
			if err := l.shipments.RecordArrival(ref, now); err != nil {
				return done, err
			}
		}
	}
	return done, nil
}
