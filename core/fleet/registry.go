// Package fleet owns the movers and answers which of them can take the next
// trip.
package fleet

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/shuttle/core/model"
	"github.com/kilianp07/shuttle/core/shift"
)

var (
	// ErrUnknownVehicle is returned for IDs not in the registry.
	ErrUnknownVehicle = errors.New("fleet: unknown vehicle")
	// ErrInvalidState is returned when a transition does not match the
	// vehicle location.
	ErrInvalidState = errors.New("fleet: invalid vehicle state")
)

// Spec describes the fleet to build.
type Spec struct {
	AtA int `json:"at_a"`
	AtB int `json:"at_b"`
	// Patterns defaults to the six canonical shift patterns.
	Patterns []model.ShiftPattern `json:"-"`
}

// Size returns the number of vehicles described.
func (s Spec) Size() int { return s.AtA + s.AtB }

// Registry holds every vehicle of a run. It is not safe for concurrent use.
type Registry struct {
	vehicles []*model.Vehicle
	byID     map[string]*model.Vehicle
	calendar *shift.Calendar
}

// NewRegistry builds the fleet. Vehicles of each node are spread evenly over
// the patterns in order, node A first.
func NewRegistry(spec Spec, cal *shift.Calendar) *Registry {
	patterns := spec.Patterns
	if len(patterns) == 0 {
		patterns = shift.Patterns()
	}
	r := &Registry{
		vehicles: make([]*model.Vehicle, 0, spec.Size()),
		byID:     make(map[string]*model.Vehicle, spec.Size()),
		calendar: cal,
	}
	for _, home := range model.Nodes {
		n := spec.AtA
		if home == model.NodeB {
			n = spec.AtB
		}
		for i := 0; i < n; i++ {
			v := &model.Vehicle{
				ID:       fmt.Sprintf("mover-%04d", len(r.vehicles)+1),
				Home:     home,
				Location: model.At(home),
			}
			cal.Assign(v, patterns[i*len(patterns)/n])
			r.vehicles = append(r.vehicles, v)
			r.byID[v.ID] = v
		}
	}
	return r
}

// Len returns the fleet size.
func (r *Registry) Len() int { return len(r.vehicles) }

// Vehicles returns the vehicles in registry order. Callers must not mutate
// them; use MarkDispatched and MarkArrived.
func (r *Registry) Vehicles() []*model.Vehicle { return r.vehicles }

// Get returns the vehicle with the given ID.
func (r *Registry) Get(id string) (*model.Vehicle, bool) {
	v, ok := r.byID[id]
	return v, ok
}

// IdleAt counts the vehicles parked at n.
func (r *Registry) IdleAt(n model.Node) int {
	c := 0
	for _, v := range r.vehicles {
		if v.Idle(n) {
			c++
		}
	}
	return c
}

// FindEligibleIdle returns an idle vehicle at n that may start a trip at t.
// A vehicle that has never been dispatched is returned as soon as it is seen;
// otherwise the first vehicle with the fewest dispatches wins.
func (r *Registry) FindEligibleIdle(n model.Node, t time.Time) (*model.Vehicle, bool) {
	var best *model.Vehicle
	for _, v := range r.vehicles {
		if !v.Idle(n) || !r.calendar.CanStart(v, t) {
			continue
		}
		if v.Dispatches() == 0 {
			return v, true
		}
		if best == nil || v.Dispatches() < best.Dispatches() {
			best = v
		}
	}
	return best, best != nil
}

// MarkDispatched puts the vehicle on the road toward dest.
func (r *Registry) MarkDispatched(id string, dest model.Node, at time.Time, load model.SizeClass, cargo model.Cargo) error {
	v, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownVehicle, id)
	}
	if v.InTransit() {
		return fmt.Errorf("%w: %s already in transit", ErrInvalidState, id)
	}
	v.Location = model.LocationInTransit
	v.Destination = dest
	switch load {
	case model.SizeFull:
		v.Trips.Full++
	case model.SizeHalf:
		v.Trips.Half++
	default:
		v.Trips.Empty++
	}
	v.Trips.Destinations = append(v.Trips.Destinations, dest)
	v.Log = append(v.Log, model.TripLogEntry{
		Departure:   at,
		Destination: dest,
		Load:        load,
		Cargo:       cargo,
	})
	return nil
}

// MarkArrived parks the vehicle at its destination.
func (r *Registry) MarkArrived(id string, at time.Time) error {
	v, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownVehicle, id)
	}
	if !v.InTransit() || len(v.Log) == 0 {
		return fmt.Errorf("%w: %s is not in transit", ErrInvalidState, id)
	}
	v.Location = model.At(v.Destination)
	v.Log[len(v.Log)-1].Arrival = at
	return nil
}
