// Package sweep runs independent simulations over a grid of parameter values.
// Each run owns its fleet, ledgers and calendar, so runs execute in parallel.
package sweep

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/shuttle/core/dispatch"
	"github.com/kilianp07/shuttle/core/factory"
	"github.com/kilianp07/shuttle/core/logger"
	"github.com/kilianp07/shuttle/core/metrics"
	"github.com/kilianp07/shuttle/core/model"
	"github.com/kilianp07/shuttle/core/report"
)

// Config describes a sweep. Parameters maps dispatch configuration keys, as
// named in the configuration file, to the values to try.
type Config struct {
	Parallelism int              `json:"parallelism"`
	Parameters  map[string][]any `json:"parameters"`
}

// Validate checks the grid is usable.
func (c Config) Validate() error {
	if c.Parallelism < 0 {
		return fmt.Errorf("sweep: parallelism must not be negative")
	}
	for k, v := range c.Parameters {
		if len(v) == 0 {
			return fmt.Errorf("sweep: parameter %q has no values", k)
		}
	}
	return nil
}

// Point is one combination of the grid applied to the base configuration.
type Point struct {
	Index  int             `json:"index"`
	Params map[string]any  `json:"params"`
	Config dispatch.Config `json:"config"`
}

// Expand builds the cartesian product of params over base. Keys vary in
// sorted order, the last key fastest.
func Expand(base dispatch.Config, params map[string][]any) ([]Point, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	combos := []map[string]any{{}}
	for _, k := range keys {
		next := make([]map[string]any, 0, len(combos)*len(params[k]))
		for _, c := range combos {
			for _, v := range params[k] {
				m := make(map[string]any, len(c)+1)
				for ck, cv := range c {
					m[ck] = cv
				}
				m[k] = v
				next = append(next, m)
			}
		}
		combos = next
	}

	points := make([]Point, len(combos))
	for i, c := range combos {
		cfg := base
		if err := factory.DecodeStrict(c, &cfg); err != nil {
			return nil, fmt.Errorf("sweep point %d: %w", i, err)
		}
		points[i] = Point{Index: i, Params: c, Config: cfg}
	}
	return points, nil
}

// Outcome is the result of one point.
type Outcome struct {
	Point   Point            `json:"point"`
	RunID   string           `json:"run_id"`
	Result  *dispatch.Result `json:"-"`
	Summary report.Summary   `json:"summary"`
}

// Option configures Run.
type Option func(*runner)

type runner struct {
	log  logger.Logger
	sink metrics.MetricsSink
}

// WithLogger sets the logger passed to every simulation.
func WithLogger(l logger.Logger) Option { return func(r *runner) { r.log = l } }

// WithMetrics sets the sink shared by every simulation. It must be safe for
// concurrent use.
func WithMetrics(s metrics.MetricsSink) Option { return func(r *runner) { r.sink = s } }

// Run executes every point of the grid over evs with at most
// cfg.Parallelism simulations at once (unbounded when zero). Outcomes are
// returned in point order. The first failing run cancels the others.
func Run(ctx context.Context, base dispatch.Config, evs []model.Event, cfg Config, opts ...Option) ([]Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := runner{log: logger.NopLogger{}, sink: metrics.NopSink{}}
	for _, o := range opts {
		o(&r)
	}
	points, err := Expand(base, cfg.Parameters)
	if err != nil {
		return nil, err
	}

	out := make([]Outcome, len(points))
	var done atomic.Int32
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Parallelism > 0 {
		g.SetLimit(cfg.Parallelism)
	}
	for i, p := range points {
		g.Go(func() error {
			id := uuid.NewString()
			sim, err := dispatch.NewSimulation(p.Config, evs,
				dispatch.WithRunID(id), dispatch.WithLogger(r.log), dispatch.WithMetrics(r.sink))
			if err != nil {
				return fmt.Errorf("sweep point %d: %w", p.Index, err)
			}
			res, err := sim.Run(ctx)
			if err != nil {
				return fmt.Errorf("sweep point %d: %w", p.Index, err)
			}
			out[i] = Outcome{Point: p, RunID: id, Result: res, Summary: report.Summarize(res)}
			r.log.Infof("sweep point %d/%d done (run %s)", done.Add(1), len(points), id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
