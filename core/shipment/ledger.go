// Package shipment keeps the state of every shipment of a run and answers
// backlog and lookahead demand queries over the ordered input sequence.
package shipment

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/shuttle/core/model"
)

// ErrInvalidTransition is returned when a status change would move a
// shipment backwards.
var ErrInvalidTransition = errors.New("shipment: invalid status transition")

// Tally counts shipments per terminal status.
type Tally struct {
	Delivered int `json:"delivered"`
	InTransit int `json:"in_transit"`
	Pending   int `json:"pending"`
	Missed    int `json:"missed"`
	Excluded  int `json:"excluded"`
}

// Ledger owns the per-shipment state of a run.
type Ledger struct {
	shipments []model.Shipment
	cutoff    float64
	// head is the lowest index that may still be pending.
	head int
}

// NewLedger creates one shipment per event. Padding events start excluded.
func NewLedger(events []model.Event, sizeCutoff float64) *Ledger {
	l := &Ledger{shipments: make([]model.Shipment, len(events)), cutoff: sizeCutoff}
	for i, ev := range events {
		s := model.Shipment{Index: i, Event: ev}
		if ev.Padding() {
			s.Status = model.StatusExcludedPadding
		}
		l.shipments[i] = s
	}
	return l
}

// Len returns the sequence length, padding included.
func (l *Ledger) Len() int { return len(l.shipments) }

// Get returns a copy of shipment i.
func (l *Ledger) Get(i int) model.Shipment { return l.shipments[i] }

// All returns a copy of every shipment.
func (l *Ledger) All() []model.Shipment {
	return append([]model.Shipment(nil), l.shipments...)
}

// SizeClass classifies shipment i against the size cutoff.
func (l *Ledger) SizeClass(i int) model.SizeClass {
	return model.Classify(l.shipments[i].RawSize, l.cutoff)
}

// RemainingDeadline returns the hours left on shipment i at now.
func (l *Ledger) RemainingDeadline(i int, now time.Time) float64 {
	return l.shipments[i].RemainingDeadline(now)
}

func (l *Ledger) advanceHead() {
	for l.head < len(l.shipments) && l.shipments[l.head].Status != model.StatusPending {
		l.head++
	}
}

// PendingIndices returns the pending indices below upto in sequence order.
func (l *Ledger) PendingIndices(upto int) []int {
	l.advanceHead()
	upto = min(upto, len(l.shipments))
	var out []int
	for i := l.head; i < upto; i++ {
		if l.shipments[i].Status == model.StatusPending {
			out = append(out, i)
		}
	}
	return out
}

// BacklogCount counts pending shipments in direction d below upto.
func (l *Ledger) BacklogCount(d model.Direction, upto int) int {
	return l.Backlog(upto).Get(d)
}

// Backlog counts pending shipments per direction below upto.
func (l *Ledger) Backlog(upto int) model.DirectionCounts {
	var c model.DirectionCounts
	for _, i := range l.PendingIndices(upto) {
		c.Inc(l.shipments[i].Direction)
	}
	return c
}

// ForwardDemand counts the shipments after from that arrive within horizon
// hours of shipment from. The scan stops at the first record beyond the
// horizon or at the end of the sequence. Padding records do not count.
func (l *Ledger) ForwardDemand(from int, horizon float64) model.DirectionCounts {
	var c model.DirectionCounts
	if from < 0 || from >= len(l.shipments) {
		return c
	}
	start := l.shipments[from].ArrivalTime
	for i := from + 1; i < len(l.shipments); i++ {
		s := l.shipments[i]
		if model.Hours(s.ArrivalTime.Sub(start)) > horizon {
			break
		}
		c.Inc(s.Direction)
	}
	return c
}

// HasPending reports whether any real shipment below upto is still pending.
func (l *Ledger) HasPending(upto int) bool {
	return len(l.PendingIndices(upto)) > 0
}

// MarkDispatched records the departure of pending shipment i on vehicle. A
// missed shipment still leaves but takes the Missed status.
func (l *Ledger) MarkDispatched(i int, departure time.Time, vehicle string, missed bool) error {
	s := &l.shipments[i]
	if s.Status != model.StatusPending {
		return fmt.Errorf("%w: shipment %d is %s", ErrInvalidTransition, i, s.Status)
	}
	if missed {
		s.Status = model.StatusMissed
	} else {
		s.Status = model.StatusDispatched
	}
	s.Departure = departure
	s.Vehicle = vehicle
	return nil
}

// RecordArrival stamps the delivery of shipment ref and computes its slack.
func (l *Ledger) RecordArrival(ref int, at time.Time) error {
	if ref < 0 || ref >= len(l.shipments) {
		return fmt.Errorf("shipment: index %d out of range", ref)
	}
	s := &l.shipments[ref]
	switch s.Status {
	case model.StatusDispatched:
		s.Status = model.StatusDelivered
	case model.StatusMissed:
		if s.Departure.IsZero() {
			return fmt.Errorf("%w: shipment %d never left", ErrInvalidTransition, ref)
		}
	default:
		return fmt.Errorf("%w: shipment %d is %s", ErrInvalidTransition, ref, s.Status)
	}
	s.Arrival = at
	s.Excess = s.DeadlineHours - model.Hours(at.Sub(s.ArrivalTime))
	return nil
}

// ApplyWarmupCutover excludes every shipment up to and including cutoff that
// has already completed its trip, clearing its movement fields. Shipments
// still waiting or on the road at the cutoff stay in the statistics. It
// returns the number of excluded shipments.
func (l *Ledger) ApplyWarmupCutover(cutoff int) int {
	n := 0
	for i := 0; i <= cutoff && i < len(l.shipments); i++ {
		s := &l.shipments[i]
		if s.Status.Excluded() || s.Arrival.IsZero() {
			continue
		}
		s.Status = model.StatusExcludedWarmup
		s.Departure = time.Time{}
		s.Arrival = time.Time{}
		s.Excess = 0
		n++
	}
	return n
}

// Tally counts shipments per status.
func (l *Ledger) Tally() Tally {
	var t Tally
	for _, s := range l.shipments {
		switch s.Status {
		case model.StatusDelivered:
			t.Delivered++
		case model.StatusDispatched:
			t.InTransit++
		case model.StatusPending:
			t.Pending++
		case model.StatusMissed:
			t.Missed++
		default:
			t.Excluded++
		}
	}
	return t
}
