package model

import (
	"fmt"
	"time"
)

// ShiftPattern is one of the canonical working patterns: twelve working hours
// starting at StartHour for day shifts, or the complementary twelve hours for
// night shifts.
type ShiftPattern struct {
	StartHour int  `json:"start_hour"`
	Night     bool `json:"night"`
}

func (p ShiftPattern) String() string {
	if p.Night {
		return fmt.Sprintf("%dn", p.StartHour)
	}
	return fmt.Sprintf("%dm", p.StartHour)
}

// TripCounts aggregates the trips a vehicle has made.
type TripCounts struct {
	Full         int    `json:"full"`
	Half         int    `json:"half"`
	Empty        int    `json:"empty"`
	Destinations []Node `json:"destinations"`
}

// TripLogEntry records a single trip of a vehicle. Arrival is zero while the
// trip is in progress.
type TripLogEntry struct {
	Departure   time.Time `json:"departure"`
	Arrival     time.Time `json:"arrival"`
	Destination Node      `json:"destination"`
	Load        SizeClass `json:"load"`
	Cargo       Cargo     `json:"cargo"`
}

// Vehicle is a mover shuttling cargo between the two nodes.
type Vehicle struct {
	ID       string
	Home     Node
	Location Location
	// Destination is meaningful only while Location is LocationInTransit.
	Destination  Node
	Shift        ShiftPattern
	WorkingHours [24]bool
	// MealHour is the fixed meal hour, or -1 when it is drawn on each check.
	MealHour int
	Trips    TripCounts
	Log      []TripLogEntry
}

// Dispatches returns the number of trips the vehicle has started.
func (v *Vehicle) Dispatches() int { return len(v.Log) }

// Idle reports whether the vehicle is parked at node n.
func (v *Vehicle) Idle(n Node) bool { return v.Location == At(n) }

// InTransit reports whether the vehicle is on the corridor.
func (v *Vehicle) InTransit() bool { return v.Location == LocationInTransit }
