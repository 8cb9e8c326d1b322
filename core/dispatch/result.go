package dispatch

import (
	"github.com/kilianp07/shuttle/core/model"
	"github.com/kilianp07/shuttle/core/shipment"
	"github.com/kilianp07/shuttle/core/transit"
)

// Series holds the per-step tracking series of a run. The fleet series are
// sampled before arrivals are settled and restart at the warm-up cutover
// from their last sample.
type Series struct {
	IdleA      []int `json:"idle_a"`
	IdleB      []int `json:"idle_b"`
	InTransit  []int `json:"in_transit"`
	BacklogToA []int `json:"backlog_to_a"`
	BacklogToB []int `json:"backlog_to_b"`
	DemandToA  []int `json:"demand_to_a"`
	DemandToB  []int `json:"demand_to_b"`
}

func (s *Series) recordFleet(c transit.FleetCounts) {
	s.IdleA = append(s.IdleA, c.IdleA)
	s.IdleB = append(s.IdleB, c.IdleB)
	s.InTransit = append(s.InTransit, c.InTransit)
}

func (s *Series) recordSignals(backlog, demand model.DirectionCounts) {
	s.BacklogToA = append(s.BacklogToA, backlog.ToA)
	s.BacklogToB = append(s.BacklogToB, backlog.ToB)
	s.DemandToA = append(s.DemandToA, demand.ToA)
	s.DemandToB = append(s.DemandToB, demand.ToB)
}

func keepLast(v []int) []int {
	if len(v) == 0 {
		return v
	}
	return []int{v[len(v)-1]}
}

func (s *Series) restartFleet() {
	s.IdleA = keepLast(s.IdleA)
	s.IdleB = keepLast(s.IdleB)
	s.InTransit = keepLast(s.InTransit)
}

func (s Series) clone() Series {
	cp := func(v []int) []int { return append([]int(nil), v...) }
	return Series{
		IdleA:      cp(s.IdleA),
		IdleB:      cp(s.IdleB),
		InTransit:  cp(s.InTransit),
		BacklogToA: cp(s.BacklogToA),
		BacklogToB: cp(s.BacklogToB),
		DemandToA:  cp(s.DemandToA),
		DemandToB:  cp(s.DemandToB),
	}
}

// Result is the outcome of a run handed to reporting.
type Result struct {
	RunID  string `json:"run_id"`
	Config Config `json:"config"`
	// Steps is the number of records processed, backlog window included.
	Steps int `json:"steps"`
	// Resolved is set when the run stopped because nothing was pending.
	Resolved    bool                `json:"resolved"`
	Cutover     bool                `json:"cutover"`
	Loads       LoadCounters        `json:"loads"`
	Tally       shipment.Tally      `json:"tally"`
	FinalCounts transit.FleetCounts `json:"final_counts"`
	Series      Series              `json:"series"`
	Shipments   []model.Shipment    `json:"shipments"`
	Vehicles    []model.Vehicle     `json:"vehicles"`
}

// Result snapshots the current state of the run.
func (s *Simulation) Result() *Result {
	vs := s.fleet.Vehicles()
	vehicles := make([]model.Vehicle, len(vs))
	for i, v := range vs {
		cp := *v
		cp.Log = append([]model.TripLogEntry(nil), v.Log...)
		cp.Trips.Destinations = append([]model.Node(nil), v.Trips.Destinations...)
		vehicles[i] = cp
	}
	return &Result{
		RunID:       s.runID,
		Config:      s.cfg,
		Steps:       s.step,
		Resolved:    s.resolved,
		Cutover:     s.cutover,
		Loads:       s.loads,
		Tally:       s.shipments.Tally(),
		FinalCounts: s.transit.Counts(),
		Series:      s.series.clone(),
		Shipments:   s.shipments.All(),
		Vehicles:    vehicles,
	}
}

// Moved returns the shipments that left and reached their destination, in
// sequence order. Missed shipments that were delivered late are included.
func (r *Result) Moved() []model.Shipment {
	var out []model.Shipment
	for _, sh := range r.Shipments {
		if sh.Status.Excluded() || sh.Departure.IsZero() || sh.Arrival.IsZero() {
			continue
		}
		out = append(out, sh)
	}
	return out
}

// Trips flattens the vehicle logs into trips, vehicle by vehicle.
func (r *Result) Trips() []model.Trip {
	var out []model.Trip
	for _, v := range r.Vehicles {
		for _, e := range v.Log {
			out = append(out, model.Trip{
				RunID:       r.RunID,
				VehicleID:   v.ID,
				Origin:      e.Destination.Opposite(),
				Destination: e.Destination,
				Load:        e.Load,
				Cargo:       e.Cargo,
				Departure:   e.Departure,
				Arrival:     e.Arrival,
			})
		}
	}
	return out
}
