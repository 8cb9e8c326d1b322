package dispatch

import (
	"time"

	"github.com/kilianp07/shuttle/core/model"
)

// rebalance moves empty movers toward the origin of a direction whose demand
// or backlog is high, as long as few movers are already there or on their
// way and the other node can spare them.
func (s *Simulation) rebalance(step int, now time.Time, backlog, demand model.DirectionCounts) error {
	for _, d := range model.Directions {
		if demand.Get(d) <= s.cfg.EmptyDispatchDemandThreshold && backlog.Get(d) <= s.cfg.BacklogCountThreshold {
			continue
		}
		starved, source := d.Origin(), d.Destination()
		if s.transit.Idle(starved)+s.transit.CountInTransitTo(starved) > s.cfg.EmptyMovementPressureThreshold {
			continue
		}
		if s.transit.Idle(source) < s.cfg.HalfFleetThreshold {
			continue
		}
		for k := 0; k < s.cfg.EmptyMoveBatchSize; k++ {
			ok, err := s.dispatch(step, source, now, model.SizeEmpty, model.EmptyCargo())
			if err != nil {
				return err
			}
			if !ok {
				break
			}
		}
	}
	return nil
}
