package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/shuttle/core/metrics"
)

// PromSink exposes the simulation state as Prometheus metrics.
type PromSink struct {
	idle      *prometheus.GaugeVec
	inTransit *prometheus.GaugeVec
	backlog   *prometheus.GaugeVec
	demand    *prometheus.GaugeVec
	trips     *prometheus.CounterVec
	missed    *prometheus.CounterVec
	shipments *prometheus.GaugeVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.idle, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shuttle_idle_vehicles",
		Help: "Vehicles parked at a node",
	}, []string{"run_id", "node"})); err != nil {
		return nil, err
	}
	if s.inTransit, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shuttle_in_transit_vehicles",
		Help: "Vehicles on the corridor",
	}, []string{"run_id"})); err != nil {
		return nil, err
	}
	if s.backlog, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shuttle_backlog_shipments",
		Help: "Pending shipments in the backlog window",
	}, []string{"run_id", "direction"})); err != nil {
		return nil, err
	}
	if s.demand, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shuttle_forward_demand_shipments",
		Help: "Shipments arriving within the forward demand horizon",
	}, []string{"run_id", "direction"})); err != nil {
		return nil, err
	}
	if s.trips, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shuttle_trips_total",
		Help: "Trips started by origin node and load",
	}, []string{"run_id", "origin", "load"})); err != nil {
		return nil, err
	}
	if s.missed, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shuttle_missed_shipments_total",
		Help: "Shipments dispatched past their deadline",
	}, []string{"run_id", "origin"})); err != nil {
		return nil, err
	}
	if s.shipments, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shuttle_run_shipments",
		Help: "Shipments by status at the end of a run",
	}, []string{"run_id", "status"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RecordStep sets the fleet and signal gauges.
func (s *PromSink) RecordStep(ev coremetrics.StepEvent) error {
	s.idle.WithLabelValues(ev.RunID, "A").Set(float64(ev.IdleA))
	s.idle.WithLabelValues(ev.RunID, "B").Set(float64(ev.IdleB))
	s.inTransit.WithLabelValues(ev.RunID).Set(float64(ev.InTransit))
	s.backlog.WithLabelValues(ev.RunID, "to_a").Set(float64(ev.Backlog.ToA))
	s.backlog.WithLabelValues(ev.RunID, "to_b").Set(float64(ev.Backlog.ToB))
	s.demand.WithLabelValues(ev.RunID, "to_a").Set(float64(ev.Demand.ToA))
	s.demand.WithLabelValues(ev.RunID, "to_b").Set(float64(ev.Demand.ToB))
	return nil
}

// RecordTrip counts the trip and any shipment it carries past its deadline.
func (s *PromSink) RecordTrip(ev coremetrics.TripEvent) error {
	origin := ev.Origin.String()
	s.trips.WithLabelValues(ev.RunID, origin, ev.Load.String()).Inc()
	if ev.Missed > 0 {
		s.missed.WithLabelValues(ev.RunID, origin).Add(float64(ev.Missed))
	}
	return nil
}

// RecordSummary publishes the final shipment tally.
func (s *PromSink) RecordSummary(ev coremetrics.SummaryEvent) error {
	for status, n := range map[string]int{
		"delivered":  ev.Delivered,
		"in_transit": ev.InTransit,
		"pending":    ev.Pending,
		"missed":     ev.Missed,
		"excluded":   ev.Excluded,
	} {
		s.shipments.WithLabelValues(ev.RunID, status).Set(float64(n))
	}
	return nil
}
