package transit

import (
	"time"

	"github.com/kilianp07/shuttle/core/model"
)

const (
	// MountHours is spent loading at the origin.
	MountHours = 0.25
	// OffloadHours is spent unloading at the destination.
	OffloadHours = 0.25
)

type durations struct{ peak, offPeak float64 }

var table = map[model.SizeClass]durations{
	model.SizeFull:  {peak: 3.0, offPeak: 2.5},
	model.SizeHalf:  {peak: 2.8, offPeak: 2.3},
	model.SizeEmpty: {peak: 2.5, offPeak: 2.0},
}

// Peak reports whether t falls in the morning (07-09h) or evening (17-20h)
// peak, bounds inclusive on the hour.
func Peak(t time.Time) bool {
	h := t.Hour()
	return (h >= 7 && h <= 9) || (h >= 17 && h <= 20)
}

// ExpectedDuration returns the one-way trip duration in hours for a load
// departing at t.
func ExpectedDuration(load model.SizeClass, t time.Time) float64 {
	d, ok := table[load]
	if !ok {
		d = table[model.SizeFull]
	}
	if Peak(t) {
		return d.peak
	}
	return d.offPeak
}

// HasArrived reports whether a trip of the given load that departed at
// departure has completed after elapsed hours.
func HasArrived(elapsed float64, load model.SizeClass, departure time.Time) bool {
	return elapsed > ExpectedDuration(load, departure)
}
