// Package shift decides whether a mover may start a trip at a given clock
// time. Working hours come from six canonical twelve-hour patterns; a start
// is allowed only when the next three hour buckets are worked and the trip
// does not run into the meal hour.
package shift
