package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/shuttle/core/dispatch"
	"github.com/kilianp07/shuttle/core/factory"
	"github.com/kilianp07/shuttle/core/logger"
	"github.com/kilianp07/shuttle/infra/metrics"
	"github.com/kilianp07/shuttle/internal/eventbus"
)

// baseConfig switches off the warm-up phases and rebalancing so a scenario
// only exercises what its overlay enables.
func baseConfig() dispatch.Config {
	cfg := dispatch.DefaultConfig()
	cfg.BacklogWindowSteps = 0
	cfg.WarmupCutoverStep = 0
	cfg.EmptyDispatchDemandThreshold = 1000
	cfg.BacklogCountThreshold = 1000
	return cfg
}

func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	evs, err := sc.Sequence()
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	cfg := baseConfig()
	cfg.TotalSteps = len(evs)
	if err := factory.DecodeStrict(sc.Simulation, &cfg); err != nil {
		t.Fatalf("simulation overlay: %v", err)
	}

	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	bus := eventbus.New()
	defer bus.Close()

	sim, err := dispatch.NewSimulation(cfg, evs,
		dispatch.WithLogger(logger.NopLogger{}), dispatch.WithMetrics(sink), dispatch.WithEventBus(bus))
	if err != nil {
		t.Fatalf("simulation: %v", err)
	}
	res, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := sc.Expected
	if got := (Loads{Full: res.Loads.Full, Half: res.Loads.Half, Empty: res.Loads.Empty}); got != want.Loads {
		t.Errorf("scenario %s: loads %+v, want %+v", sc.Name, got, want.Loads)
	}
	ta := res.Tally
	if got := (Tally{Delivered: ta.Delivered, InTransit: ta.InTransit, Pending: ta.Pending, Missed: ta.Missed, Excluded: ta.Excluded}); got != want.Tally {
		t.Errorf("scenario %s: tally %+v, want %+v", sc.Name, got, want.Tally)
	}
	fc := res.FinalCounts
	if got := (Counts{IdleA: fc.IdleA, IdleB: fc.IdleB, InTransit: fc.InTransit}); got != want.Final {
		t.Errorf("scenario %s: final counts %+v, want %+v", sc.Name, got, want.Final)
	}

	if trips := counterSum(t, reg, "shuttle_trips_total"); int(trips) != res.Loads.Total() {
		t.Errorf("scenario %s: exported %v trips, counted %d", sc.Name, trips, res.Loads.Total())
	}
}

func counterSum(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	mfs, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sum float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}
