package dispatch

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/shuttle/core/events"
	"github.com/kilianp07/shuttle/core/fleet"
	"github.com/kilianp07/shuttle/core/logger"
	"github.com/kilianp07/shuttle/core/metrics"
	"github.com/kilianp07/shuttle/core/model"
	"github.com/kilianp07/shuttle/core/shift"
	"github.com/kilianp07/shuttle/core/shipment"
	"github.com/kilianp07/shuttle/core/transit"
	"github.com/kilianp07/shuttle/internal/eventbus"
)

// State is the lifecycle state of a simulation. Warmup covers the time
// between construction and the first step: the backlog window records are
// preloaded and the first step runs at the end of that window, so no step is
// ever taken inside it.
type State int

const (
	// StateWarmup holds until the first step.
	StateWarmup State = iota
	// StateSteady holds while records are being processed.
	StateSteady
	// StateDone is reached at the end of the sequence or once every real
	// shipment is resolved under StopWhenResolved.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateWarmup:
		return "warmup"
	case StateSteady:
		return "steady"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// LoadCounters counts trips by load since the start of the run or since the
// warm-up cutover.
type LoadCounters struct {
	Full  int `json:"full"`
	Half  int `json:"half"`
	Empty int `json:"empty"`
}

// Total returns the number of trips counted.
func (c LoadCounters) Total() int { return c.Full + c.Half + c.Empty }

func (c *LoadCounters) inc(load model.SizeClass) {
	switch load {
	case model.SizeFull:
		c.Full++
	case model.SizeHalf:
		c.Half++
	default:
		c.Empty++
	}
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the metrics sink. Defaults to metrics.NopSink.
func WithMetrics(m metrics.MetricsSink) Option {
	return func(s *Simulation) {
		if m != nil {
			s.sink = m
		}
	}
}

// WithEventBus publishes progress, cutover and completion events on bus.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(s *Simulation) { s.bus = bus }
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(s *Simulation) {
		if id != "" {
			s.runID = id
		}
	}
}

// Simulation is one run of the dispatch engine over an ordered event
// sequence. It is not safe for concurrent use.
type Simulation struct {
	cfg   Config
	runID string
	log   logger.Logger
	sink  metrics.MetricsSink
	bus   eventbus.EventBus

	calendar  *shift.Calendar
	fleet     *fleet.Registry
	transit   *transit.Ledger
	shipments *shipment.Ledger

	series   Series
	loads    LoadCounters
	state    State
	step     int
	end      int
	lastReal int
	cutover  bool
	resolved bool
	progress map[int]int
}

// NewSimulation validates cfg and events and prepares a run. Events must be
// sorted by arrival time; padding events are appended after the first
// cfg.TotalSteps events.
func NewSimulation(cfg Config, evs []model.Event, opts ...Option) (*Simulation, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TotalSteps > len(evs) {
		return nil, invalid("total_steps %d exceeds the %d input records", cfg.TotalSteps, len(evs))
	}
	seq, err := buildSequence(cfg, evs)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:      cfg,
		runID:    uuid.NewString(),
		log:      logger.NopLogger{},
		sink:     metrics.NopSink{},
		step:     cfg.BacklogWindowSteps,
		end:      len(seq),
		lastReal: -1,
	}
	for _, o := range opts {
		o(s)
	}
	for i, ev := range seq {
		if !ev.Padding() {
			s.lastReal = i
		}
	}

	s.calendar = shift.NewCalendar(cfg.MealPolicy, cfg.Seed)
	s.fleet = fleet.NewRegistry(fleet.Spec{AtA: cfg.InitialFleetAtNodeA, AtB: cfg.InitialFleetAtNodeB}, s.calendar)
	s.shipments = shipment.NewLedger(seq, cfg.SizeCutoff)
	s.transit = transit.NewLedger(cfg.InitialFleetAtNodeA, cfg.InitialFleetAtNodeB, s.fleet, s.shipments)
	s.progress = progressMarks(s.step, s.end-1)
	return s, nil
}

func buildSequence(cfg Config, evs []model.Event) ([]model.Event, error) {
	seq := make([]model.Event, 0, cfg.Steps())
	for i, ev := range evs[:cfg.TotalSteps] {
		if i > 0 && ev.ArrivalTime.Before(evs[i-1].ArrivalTime) {
			return nil, &InputOrderError{Index: i, Prev: evs[i-1].ArrivalTime, Got: ev.ArrivalTime}
		}
		seq = append(seq, ev)
	}
	last := seq[len(seq)-1].ArrivalTime
	interval := time.Duration(cfg.PaddingIntervalMinutes) * time.Minute
	for k := 1; k <= cfg.PaddingSteps; k++ {
		seq = append(seq, model.Event{Direction: model.DirectionNone, ArrivalTime: last.Add(time.Duration(k) * interval)})
	}
	return seq, nil
}

// progressMarks maps ten evenly spaced steps between first and last to the
// percentage they represent.
func progressMarks(first, last int) map[int]int {
	marks := make(map[int]int, 11)
	for k := 0; k <= 10; k++ {
		step := first + int(math.Floor(float64(last-first)*float64(k)/10))
		if _, ok := marks[step]; !ok {
			marks[step] = k * 10
		}
	}
	return marks
}

// RunID returns the identifier of the run.
func (s *Simulation) RunID() string { return s.runID }

// State returns the lifecycle state.
func (s *Simulation) State() State { return s.state }

// Cursor returns the index of the next shipment to process.
func (s *Simulation) Cursor() int { return s.step }

// Counts returns the current fleet distribution.
func (s *Simulation) Counts() transit.FleetCounts { return s.transit.Counts() }

// Loads returns the trip counters.
func (s *Simulation) Loads() LoadCounters { return s.loads }

// Shipment returns a copy of shipment i.
func (s *Simulation) Shipment(i int) model.Shipment { return s.shipments.Get(i) }

// ActiveTrips returns the trips on the road.
func (s *Simulation) ActiveTrips() []transit.Record { return s.transit.Active() }

// Run steps through the sequence until the run is done or ctx is canceled.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		more, err := s.Step()
		if err != nil {
			return nil, err
		}
		if !more {
			return s.Result(), nil
		}
	}
}

// Step processes the next shipment. It returns false once the run is done.
func (s *Simulation) Step() (bool, error) {
	if s.state == StateDone {
		return false, nil
	}
	s.state = StateSteady
	i := s.step
	ev := s.shipments.Get(i)
	now := ev.ArrivalTime

	s.series.recordFleet(s.transit.Counts())
	if _, err := s.transit.SettleArrivals(now); err != nil {
		return false, fmt.Errorf("step %d: settle arrivals: %w", i, err)
	}

	backlog := s.shipments.Backlog(i)
	demand := s.shipments.ForwardDemand(i, s.cfg.ForwardDemandHorizonHours)
	s.series.recordSignals(backlog, demand)

	if s.cfg.WarmupCutoverStep > 0 && i == s.cfg.WarmupCutoverStep {
		s.applyCutover(i)
	}

	if err := s.settleBacklog(i, now); err != nil {
		return false, err
	}
	if err := s.pairHalfLoads(i, now); err != nil {
		return false, err
	}
	if !ev.Padding() {
		if err := s.handleCurrent(i, now, demand); err != nil {
			return false, err
		}
	}
	if err := s.rebalance(i, now, backlog, demand); err != nil {
		return false, err
	}

	s.recordStep(i, now, backlog, demand)
	if pct, ok := s.progress[i]; ok && s.bus != nil {
		s.bus.Publish(events.ProgressEvent{RunID: s.runID, Step: i, Total: s.end, Percent: pct})
	}

	s.step++
	switch {
	case s.step >= s.end:
		s.finish("exhausted")
	case s.cfg.StopWhenResolved && s.step > s.lastReal && !s.shipments.HasPending(s.end):
		s.resolved = true
		s.finish("resolved")
	}
	return s.state != StateDone, nil
}

func (s *Simulation) applyCutover(i int) {
	n := s.shipments.ApplyWarmupCutover(i)
	s.series.restartFleet()
	s.loads = LoadCounters{}
	s.cutover = true
	s.log.Infof("warm-up cutover at step %d: %d shipments excluded", i, n)
	if s.bus != nil {
		s.bus.Publish(events.CutoverEvent{RunID: s.runID, Step: i, Excluded: n})
	}
}

// dispatch sends one vehicle from origin carrying cargo. It reports false
// when the origin has no idle vehicle able to start at now.
func (s *Simulation) dispatch(step int, origin model.Node, now time.Time, load model.SizeClass, cargo model.Cargo) (bool, error) {
	if s.transit.Idle(origin) == 0 {
		return false, nil
	}
	v, ok := s.fleet.FindEligibleIdle(origin, now)
	if !ok {
		return false, nil
	}
	if _, err := s.transit.Dispatch(v.ID, origin, now, load, cargo); err != nil {
		return false, fmt.Errorf("step %d: dispatch %s: %w", step, v.ID, err)
	}
	departure := now.Add(s.cfg.Mount())
	missed := 0
	for _, ref := range cargo.Refs() {
		breach := s.shipments.RemainingDeadline(ref, now) <= transit.ExpectedDuration(load, now)
		if breach {
			missed++
		}
		if err := s.shipments.MarkDispatched(ref, departure, v.ID, breach); err != nil {
			return false, fmt.Errorf("step %d: %w", step, err)
		}
	}
	s.loads.inc(load)
	s.log.Debugw("dispatch", map[string]any{
		"run_id":  s.runID,
		"step":    step,
		"vehicle": v.ID,
		"origin":  origin.String(),
		"load":    load.String(),
		"cargo":   cargo.String(),
		"missed":  missed,
	})
	if rec, ok := s.sink.(metrics.TripRecorder); ok {
		ev := metrics.TripEvent{
			RunID:     s.runID,
			Step:      step,
			VehicleID: v.ID,
			Origin:    origin,
			Load:      load,
			Cargo:     cargo,
			Missed:    missed,
			Time:      now,
		}
		if err := rec.RecordTrip(ev); err != nil {
			s.log.Errorf("trip metrics error: %v", err)
		}
	}
	return true, nil
}

func (s *Simulation) recordStep(i int, now time.Time, backlog, demand model.DirectionCounts) {
	c := s.transit.Counts()
	ev := metrics.StepEvent{
		RunID:     s.runID,
		Step:      i,
		Time:      now,
		IdleA:     c.IdleA,
		IdleB:     c.IdleB,
		InTransit: c.InTransit,
		Backlog:   backlog,
		Demand:    demand,
	}
	if err := s.sink.RecordStep(ev); err != nil {
		s.log.Errorf("step metrics error: %v", err)
	}
}

func (s *Simulation) finish(reason string) {
	s.state = StateDone
	tally := s.shipments.Tally()
	s.log.Infof("run %s done after %d steps (%s): full=%d half=%d empty=%d delivered=%d pending=%d missed=%d",
		s.runID, s.step, reason, s.loads.Full, s.loads.Half, s.loads.Empty, tally.Delivered, tally.Pending, tally.Missed)
	if rec, ok := s.sink.(metrics.SummaryRecorder); ok {
		ev := metrics.SummaryEvent{
			RunID:      s.runID,
			Steps:      s.step,
			FullTrips:  s.loads.Full,
			HalfTrips:  s.loads.Half,
			EmptyTrips: s.loads.Empty,
			Delivered:  tally.Delivered,
			InTransit:  tally.InTransit,
			Pending:    tally.Pending,
			Missed:     tally.Missed,
			Excluded:   tally.Excluded,
			Time:       s.shipments.Get(s.step - 1).ArrivalTime,
		}
		if err := rec.RecordSummary(ev); err != nil {
			s.log.Errorf("summary metrics error: %v", err)
		}
	}
	if s.bus != nil {
		s.bus.Publish(events.DoneEvent{RunID: s.runID, Steps: s.step, Reason: reason})
	}
}
