// Package transit models trips on the corridor: how long a trip takes and
// which movers are currently on the road.
//
// Durations are door to door and already include a quarter hour of mounting
// at the origin and a quarter hour of offloading at the destination. The
// peak classification of a trip is fixed by its departure time.
package transit
