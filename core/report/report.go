// Package report condenses a run into the load, backlog, demand and slack
// statistics used to compare parameter sets.
package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/shuttle/core/dispatch"
	"github.com/kilianp07/shuttle/core/model"
	"github.com/kilianp07/shuttle/core/transit"
)

// LoadShare is the proportion of trips by load.
type LoadShare struct {
	Full  float64 `json:"full"`
	Half  float64 `json:"half"`
	Empty float64 `json:"empty"`
}

// SeriesStats describes a per-step series.
type SeriesStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Max    float64 `json:"max"`
}

// SlackStats describes the slack left at delivery, in hours.
type SlackStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
}

// StatusShare is the proportion of counted shipments in each status.
type StatusShare struct {
	Delivered float64 `json:"delivered"`
	InTransit float64 `json:"in_transit"`
	Pending   float64 `json:"pending"`
	Missed    float64 `json:"missed"`
}

// WorkTime splits the hours the fleet spent working. Trip time between
// dispatch and arrival includes mounting and offloading, which are reported
// separately; Driving covers completed trips only.
type WorkTime struct {
	Driving float64 `json:"driving"`
	Mount   float64 `json:"mount"`
	Offload float64 `json:"offload"`
	// MeanPerVehicle is the mean of the per-vehicle totals.
	MeanPerVehicle float64 `json:"mean_per_vehicle"`
}

// Total returns the hours worked by the whole fleet.
func (w WorkTime) Total() float64 { return w.Driving + w.Mount + w.Offload }

// Summary is the condensed view of one run.
type Summary struct {
	RunID      string      `json:"run_id"`
	Steps      int         `json:"steps"`
	Trips      int         `json:"trips"`
	Loads      LoadShare   `json:"loads"`
	BacklogToA SeriesStats `json:"backlog_to_a"`
	BacklogToB SeriesStats `json:"backlog_to_b"`
	DemandToA  SeriesStats `json:"demand_to_a"`
	DemandToB  SeriesStats `json:"demand_to_b"`
	IdleA      SeriesStats `json:"idle_a"`
	IdleB      SeriesStats `json:"idle_b"`
	InTransit  SeriesStats `json:"in_transit"`
	Slack      SlackStats  `json:"slack"`
	Status     StatusShare `json:"status"`
	Work       WorkTime    `json:"work"`
}

// Summarize computes the summary of res.
func Summarize(res *dispatch.Result) Summary {
	s := Summary{
		RunID:      res.RunID,
		Steps:      res.Steps,
		Trips:      res.Loads.Total(),
		Loads:      loadShare(res.Loads),
		BacklogToA: seriesStats(res.Series.BacklogToA),
		BacklogToB: seriesStats(res.Series.BacklogToB),
		DemandToA:  seriesStats(res.Series.DemandToA),
		DemandToB:  seriesStats(res.Series.DemandToB),
		IdleA:      seriesStats(res.Series.IdleA),
		IdleB:      seriesStats(res.Series.IdleB),
		InTransit:  seriesStats(res.Series.InTransit),
		Slack:      slackStats(res.Shipments),
		Work:       workTime(res.Vehicles),
	}
	t := res.Tally
	if counted := t.Delivered + t.InTransit + t.Pending + t.Missed; counted > 0 {
		n := float64(counted)
		s.Status = StatusShare{
			Delivered: float64(t.Delivered) / n,
			InTransit: float64(t.InTransit) / n,
			Pending:   float64(t.Pending) / n,
			Missed:    float64(t.Missed) / n,
		}
	}
	return s
}

func loadShare(c dispatch.LoadCounters) LoadShare {
	total := float64(c.Total())
	if total == 0 {
		return LoadShare{}
	}
	return LoadShare{
		Full:  float64(c.Full) / total,
		Half:  float64(c.Half) / total,
		Empty: float64(c.Empty) / total,
	}
}

func toFloats(v []int) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func seriesStats(v []int) SeriesStats {
	if len(v) == 0 {
		return SeriesStats{}
	}
	xs := toFloats(v)
	var st SeriesStats
	if len(xs) == 1 {
		st.Mean = xs[0]
	} else {
		st.Mean, st.StdDev = stat.MeanStdDev(xs, nil)
	}
	st.Max = floats.Max(xs)
	return st
}

func slackStats(shipments []model.Shipment) SlackStats {
	var xs []float64
	for _, sh := range shipments {
		if sh.Status == model.StatusDelivered {
			xs = append(xs, sh.Excess)
		}
	}
	if len(xs) == 0 {
		return SlackStats{}
	}
	sort.Float64s(xs)
	return SlackStats{
		Count:  len(xs),
		Mean:   stat.Mean(xs, nil),
		Min:    xs[0],
		Median: stat.Quantile(0.5, stat.Empirical, xs, nil),
	}
}

func workTime(vehicles []model.Vehicle) WorkTime {
	var w WorkTime
	if len(vehicles) == 0 {
		return w
	}
	per := make([]float64, len(vehicles))
	for i, v := range vehicles {
		var driving, mount, offload float64
		for _, e := range v.Log {
			mount += transit.MountHours
			if e.Arrival.IsZero() {
				continue
			}
			offload += transit.OffloadHours
			driving += math.Max(0, model.Hours(e.Arrival.Sub(e.Departure))-transit.MountHours-transit.OffloadHours)
		}
		w.Driving += driving
		w.Mount += mount
		w.Offload += offload
		per[i] = driving + mount + offload
	}
	w.MeanPerVehicle = stat.Mean(per, nil)
	return w
}
