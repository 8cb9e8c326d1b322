package model

import "time"

// Trip is one completed or ongoing vehicle movement as persisted and
// exported after a run. Arrival is zero for trips still on the road.
type Trip struct {
	RunID       string    `json:"run_id"`
	VehicleID   string    `json:"vehicle_id"`
	Origin      Node      `json:"origin"`
	Destination Node      `json:"destination"`
	Load        SizeClass `json:"load"`
	Cargo       Cargo     `json:"cargo"`
	Departure   time.Time `json:"departure"`
	Arrival     time.Time `json:"arrival"`
}
