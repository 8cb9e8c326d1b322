package dispatch

import (
	"sort"
	"time"

	"github.com/kilianp07/shuttle/core/model"
	"github.com/kilianp07/shuttle/core/transit"
)

// byRemainingDeadline sorts indices by deadline left at now, keeping input
// order among equal deadlines.
func (s *Simulation) byRemainingDeadline(idx []int, now time.Time) {
	sort.SliceStable(idx, func(a, b int) bool {
		return s.shipments.RemainingDeadline(idx[a], now) < s.shipments.RemainingDeadline(idx[b], now)
	})
}

// settleBacklog walks the waiting shipments, most urgent first. Full loads,
// urgent shipments and shipments that can no longer make their deadline leave
// as soon as a mover is available at their origin.
func (s *Simulation) settleBacklog(step int, now time.Time) error {
	pending := s.shipments.PendingIndices(step)
	if len(pending) == 0 {
		return nil
	}
	s.byRemainingDeadline(pending, now)
	for _, j := range pending {
		if s.transit.IdleTotal() == 0 {
			return nil
		}
		size := s.shipments.SizeClass(j)
		remaining := s.shipments.RemainingDeadline(j, now)
		breach := remaining <= transit.ExpectedDuration(size, now)
		if remaining >= s.cfg.UrgentDeadlineThresholdHours && size != model.SizeFull && !breach {
			continue
		}
		origin := s.shipments.Get(j).Direction.Origin()
		if _, err := s.dispatch(step, origin, now, size, model.SingleCargo(j)); err != nil {
			return err
		}
	}
	return nil
}

// pairHalfLoads combines waiting half loads of the same direction, two per
// mover, most urgent first.
func (s *Simulation) pairHalfLoads(step int, now time.Time) error {
	var byDir [2][]int
	for _, j := range s.shipments.PendingIndices(step) {
		if s.shipments.SizeClass(j) != model.SizeHalf {
			continue
		}
		switch s.shipments.Get(j).Direction {
		case model.ToNodeA:
			byDir[0] = append(byDir[0], j)
		case model.ToNodeB:
			byDir[1] = append(byDir[1], j)
		}
	}
	for k, d := range model.Directions {
		list := byDir[k]
		s.byRemainingDeadline(list, now)
		origin := d.Origin()
		for p := 1; p < len(list); p += 2 {
			if s.transit.Idle(origin) == 0 {
				break
			}
			if _, err := s.dispatch(step, origin, now, model.SizeFull, model.PairedCargo(list[p-1], list[p])); err != nil {
				return err
			}
		}
	}
	return nil
}

// handleCurrent decides on the shipment of this step. Full loads leave at
// once. A half load first looks for an earlier half load going the same way;
// alone, it leaves only when its destination runs short of movers while
// demand for the way back is high, or when its deadline is urgent.
func (s *Simulation) handleCurrent(step int, now time.Time, demand model.DirectionCounts) error {
	cur := s.shipments.Get(step)
	if cur.Status != model.StatusPending {
		return nil
	}
	origin := cur.Direction.Origin()
	if s.shipments.SizeClass(step) == model.SizeFull {
		_, err := s.dispatch(step, origin, now, model.SizeFull, model.SingleCargo(step))
		return err
	}
	for _, j := range s.shipments.PendingIndices(step) {
		if s.shipments.Get(j).Direction == cur.Direction && s.shipments.SizeClass(j) == model.SizeHalf {
			_, err := s.dispatch(step, origin, now, model.SizeFull, model.PairedCargo(j, step))
			return err
		}
	}
	short := s.transit.Idle(cur.Direction.Destination()) < s.cfg.HalfFleetThreshold
	returnDemand := demand.Get(model.Toward(origin)) > s.cfg.ForwardDemandThreshold
	urgent := s.shipments.RemainingDeadline(step, now) < s.cfg.UrgentDeadlineThresholdHours
	if (short && returnDemand) || urgent {
		_, err := s.dispatch(step, origin, now, model.SizeHalf, model.SingleCargo(step))
		return err
	}
	return nil
}
