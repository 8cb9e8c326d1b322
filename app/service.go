// Package app wires configuration, input, simulation, sinks and persistence.
package app

import (
	"context"
	"fmt"

	"github.com/kilianp07/shuttle/config"
	"github.com/kilianp07/shuttle/core/dispatch"
	coremetrics "github.com/kilianp07/shuttle/core/metrics"
	"github.com/kilianp07/shuttle/core/model"
	"github.com/kilianp07/shuttle/core/report"
	"github.com/kilianp07/shuttle/core/sweep"
	"github.com/kilianp07/shuttle/core/triplog"
	"github.com/kilianp07/shuttle/infra/logger"
	"github.com/kilianp07/shuttle/infra/metrics"
	"github.com/kilianp07/shuttle/infra/source"
	"github.com/kilianp07/shuttle/internal/eventbus"
	"github.com/kilianp07/shuttle/pkg/export"
)

// Service runs simulations described by the configuration.
type Service struct {
	cfg   *config.Config
	log   logger.Logger
	sink  coremetrics.MetricsSink
	store triplog.Store
	bus   *eventbus.Bus
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := triplog.Open(cfg.TripLog)
	if err != nil {
		return nil, fmt.Errorf("trip log: %w", err)
	}
	return &Service{
		cfg:   cfg,
		log:   logger.New("service"),
		sink:  sink,
		store: store,
		bus:   eventbus.New(eventbus.WithBuffer(32)),
	}, nil
}

// Bus returns the bus carrying run lifecycle events.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// Events loads the input sequence.
func (s *Service) Events() ([]model.Event, error) {
	evs, err := source.Load(s.cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}
	s.log.Infof("loaded %d records from %s", len(evs), s.cfg.Input.Path)
	return evs, nil
}

// simulationConfig returns the simulation section with total_steps defaulted
// to the whole input.
func (s *Service) simulationConfig(evs []model.Event) dispatch.Config {
	cfg := s.cfg.Simulation
	if cfg.TotalSteps == 0 {
		cfg.TotalSteps = len(evs)
	}
	return cfg
}

func (s *Service) servePrometheus(ctx context.Context) {
	addr := s.cfg.Metrics.PrometheusAddr
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, addr, s.log); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Run executes one simulation, persists its trips and exports the moved
// shipments.
func (s *Service) Run(ctx context.Context) (*dispatch.Result, report.Summary, error) {
	evs, err := s.Events()
	if err != nil {
		return nil, report.Summary{}, err
	}
	s.servePrometheus(ctx)
	sim, err := dispatch.NewSimulation(s.simulationConfig(evs), evs,
		dispatch.WithLogger(logger.New("dispatch")),
		dispatch.WithMetrics(s.sink),
		dispatch.WithEventBus(s.bus))
	if err != nil {
		return nil, report.Summary{}, err
	}
	res, err := sim.Run(ctx)
	if err != nil {
		return nil, report.Summary{}, err
	}
	if err := s.persist(ctx, res); err != nil {
		return nil, report.Summary{}, err
	}
	if s.cfg.Output.Path != "" {
		if err := export.WriteFile(s.cfg.Output, res.Moved()); err != nil {
			return nil, report.Summary{}, fmt.Errorf("export: %w", err)
		}
		s.log.Infof("exported %d moved shipments to %s", len(res.Moved()), s.cfg.Output.Path)
	}
	return res, report.Summarize(res), nil
}

// Sweep runs every point of the configured parameter grid.
func (s *Service) Sweep(ctx context.Context) ([]sweep.Outcome, error) {
	evs, err := s.Events()
	if err != nil {
		return nil, err
	}
	s.servePrometheus(ctx)
	outs, err := sweep.Run(ctx, s.simulationConfig(evs), evs, s.cfg.Sweep,
		sweep.WithLogger(logger.New("sweep")), sweep.WithMetrics(s.sink))
	if err != nil {
		return nil, err
	}
	for _, o := range outs {
		if err := s.persist(ctx, o.Result); err != nil {
			return nil, err
		}
	}
	return outs, nil
}

func (s *Service) persist(ctx context.Context, res *dispatch.Result) error {
	if s.store == nil {
		return nil
	}
	trips := res.Trips()
	if err := s.store.Append(ctx, trips...); err != nil {
		return fmt.Errorf("trip log: %w", err)
	}
	s.log.Debugf("stored %d trips of run %s", len(trips), res.RunID)
	return nil
}

// Trips queries the trip log.
func (s *Service) Trips(ctx context.Context, q triplog.Query) ([]model.Trip, error) {
	if s.store == nil {
		return nil, fmt.Errorf("trip log is disabled")
	}
	return s.store.Query(ctx, q)
}

// Close releases the trip log and the event bus.
func (s *Service) Close() error {
	s.bus.Close()
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
