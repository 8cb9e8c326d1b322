package dispatch

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/kilianp07/shuttle/core/events"
	"github.com/kilianp07/shuttle/core/model"
	"github.com/kilianp07/shuttle/internal/eventbus"
)

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := map[string]func(*Config){
		"empty fleet":        func(c *Config) { c.InitialFleetAtNodeA, c.InitialFleetAtNodeB = 0, 0 },
		"negative fleet":     func(c *Config) { c.InitialFleetAtNodeA = -1 },
		"zero steps":         func(c *Config) { c.TotalSteps = 0 },
		"cutover too late":   func(c *Config) { c.WarmupCutoverStep = 11 },
		"cutover too early":  func(c *Config) { c.BacklogWindowSteps, c.WarmupCutoverStep = 5, 3 },
		"window too large":   func(c *Config) { c.BacklogWindowSteps = 10 },
		"bad meal policy":    func(c *Config) { c.MealPolicy = "sometimes" },
		"negative batch":     func(c *Config) { c.EmptyMoveBatchSize = -1 },
		"negative threshold": func(c *Config) { c.HalfFleetThreshold = -2 },
	}
	for name, mutate := range cases {
		cfg := quietConfig(2, 2, 10)
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
	if err := quietConfig(2, 2, 10).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestNewSimulationRejectsShortInput(t *testing.T) {
	evs := []model.Event{full(model.ToNodeB, at(10, 0), 10)}
	_, err := NewSimulation(quietConfig(1, 1, 2), evs)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewSimulationRejectsUnsortedInput(t *testing.T) {
	evs := []model.Event{
		full(model.ToNodeB, at(10, 0), 10),
		full(model.ToNodeB, at(11, 0), 10),
		full(model.ToNodeA, at(10, 30), 10),
	}
	_, err := NewSimulation(quietConfig(1, 1, 3), evs)
	var oe *InputOrderError
	if !errors.As(err, &oe) {
		t.Fatalf("expected InputOrderError, got %v", err)
	}
	if oe.Index != 2 || !oe.Got.Equal(at(10, 30)) {
		t.Fatalf("unexpected error detail %+v", oe)
	}
	if !errors.Is(err, ErrInputOrder) {
		t.Fatal("expected errors.Is to match ErrInputOrder")
	}
}

func TestPaddingIsAppended(t *testing.T) {
	evs := []model.Event{full(model.ToNodeB, at(10, 0), 10)}
	cfg := quietConfig(1, 0, 1)
	cfg.PaddingSteps = 3
	s := newSim(t, cfg, evs)
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Steps != 4 || len(res.Shipments) != 4 {
		t.Fatalf("expected 4 steps, got %d", res.Steps)
	}
	last := res.Shipments[3]
	if last.Status != model.StatusExcludedPadding || !last.ArrivalTime.Equal(at(10, 15)) {
		t.Fatalf("unexpected padding record %+v", last)
	}
	if len(res.Series.IdleA) != 4 || len(res.Series.DemandToB) != 4 {
		t.Fatalf("expected one sample per step")
	}
}

func TestLifecycleStates(t *testing.T) {
	evs := []model.Event{
		full(model.ToNodeB, at(10, 0), 10),
		full(model.ToNodeB, at(10, 10), 10),
		full(model.ToNodeB, at(10, 20), 10),
	}
	cfg := quietConfig(3, 0, len(evs))
	cfg.BacklogWindowSteps = 1
	s := newSim(t, cfg, evs)
	if s.State() != StateWarmup || s.Cursor() != 1 {
		t.Fatalf("expected warmup at cursor 1, got %s at %d", s.State(), s.Cursor())
	}
	if s.Shipment(0).Status != model.StatusPending {
		t.Fatalf("backlog window record should be loaded as pending")
	}
	mustStep(t, s)
	if s.State() != StateSteady {
		t.Fatalf("expected steady after the first step, got %s", s.State())
	}
	if more := mustStep(t, s); more || s.State() != StateDone {
		t.Fatalf("expected done at the end of the sequence, got %s", s.State())
	}
	if got := StateDone.String(); got != "done" {
		t.Fatalf("unexpected state name %q", got)
	}
}

func TestStopWhenResolved(t *testing.T) {
	evs := []model.Event{
		full(model.ToNodeB, at(10, 0), 10),
		full(model.ToNodeB, at(10, 5), 10),
		full(model.ToNodeB, at(10, 10), 10),
	}
	cfg := quietConfig(6, 0, 3)
	cfg.PaddingSteps = 50
	cfg.StopWhenResolved = true
	res, err := newSim(t, cfg, evs).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Resolved || res.Steps != 3 {
		t.Fatalf("expected early stop after 3 steps, got resolved=%v steps=%d", res.Resolved, res.Steps)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	evs := []model.Event{full(model.ToNodeB, at(10, 0), 10)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newSim(t, quietConfig(1, 0, 1), evs).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWarmupCutover(t *testing.T) {
	evs := []model.Event{
		full(model.ToNodeB, at(10, 0), 10),
		half(model.ToNodeB, at(10, 30), 30),
		pad(at(13, 0)),
		pad(at(13, 5)),
	}
	cfg := quietConfig(2, 0, len(evs))
	cfg.WarmupCutoverStep = 3
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	res, err := newSim(t, cfg, evs, WithEventBus(bus), WithRunID("run-1")).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Cutover || res.Loads != (LoadCounters{}) {
		t.Fatalf("expected counters reset at cutover, got %+v", res.Loads)
	}
	if res.Shipments[0].Status != model.StatusExcludedWarmup || !res.Shipments[0].Arrival.IsZero() {
		t.Fatalf("delivered shipment should be excluded: %+v", res.Shipments[0])
	}
	if res.Shipments[1].Status != model.StatusPending {
		t.Fatalf("waiting shipment should stay pending, got %s", res.Shipments[1].Status)
	}
	if len(res.Series.IdleA) != 1 || len(res.Series.BacklogToB) != 4 {
		t.Fatalf("fleet series should restart at the cutover: %+v", res.Series)
	}

	var cutover *events.CutoverEvent
	var done *events.DoneEvent
	progress := 0
	for len(sub) > 0 {
		switch ev := (<-sub).(type) {
		case events.CutoverEvent:
			cutover = &ev
		case events.DoneEvent:
			done = &ev
		case events.ProgressEvent:
			progress++
		}
	}
	if cutover == nil || cutover.Step != 3 || cutover.Excluded != 1 || cutover.RunID != "run-1" {
		t.Fatalf("unexpected cutover event %+v", cutover)
	}
	if done == nil || done.Reason != "exhausted" {
		t.Fatalf("unexpected done event %+v", done)
	}
	if progress != 4 {
		t.Fatalf("expected 4 progress events, got %d", progress)
	}
}

func randomEvents(seed int64, n int) []model.Event {
	rng := rand.New(rand.NewSource(seed))
	t := at(6, 0)
	evs := make([]model.Event, n)
	for i := range evs {
		t = t.Add(time.Duration(3+rng.Intn(10)) * time.Minute)
		d := model.ToNodeA
		if rng.Intn(2) == 0 {
			d = model.ToNodeB
		}
		size := 20.0
		if rng.Intn(3) == 0 {
			size = 40
		}
		evs[i] = model.Event{Direction: d, RawSize: size, ArrivalTime: t, DeadlineHours: 4 + rng.Float64()*20}
	}
	return evs
}

func rank(s model.ShipmentStatus) int {
	switch s {
	case model.StatusPending:
		return 0
	case model.StatusDispatched:
		return 1
	default:
		return 2
	}
}

func TestSimulationProperties(t *testing.T) {
	evs := randomEvents(7, 300)
	cfg := Config{
		InitialFleetAtNodeA:            20,
		InitialFleetAtNodeB:            20,
		UrgentDeadlineThresholdHours:   6,
		BacklogCountThreshold:          15,
		ForwardDemandThreshold:         10,
		EmptyDispatchDemandThreshold:   12,
		ForwardDemandHorizonHours:      2,
		HalfFleetThreshold:             5,
		EmptyMovementPressureThreshold: 3,
		EmptyMoveBatchSize:             1,
		TotalSteps:                     len(evs),
		BacklogWindowSteps:             10,
		WarmupCutoverStep:              60,
		PaddingSteps:                   40,
		Seed:                           3,
	}
	s := newSim(t, cfg, evs)
	prev := make([]model.ShipmentStatus, cfg.Steps())
	for i := range prev {
		prev[i] = s.Shipment(i).Status
	}

	for more := true; more; {
		more = mustStep(t, s)
		now := s.Shipment(s.Cursor() - 1).ArrivalTime

		if got := s.Counts().Total(); got != 40 {
			t.Fatalf("step %d: fleet not conserved: %d", s.Cursor(), got)
		}
		seen := map[string]bool{}
		for _, tr := range s.ActiveTrips() {
			if seen[tr.VehicleID] {
				t.Fatalf("vehicle %s on two trips", tr.VehicleID)
			}
			seen[tr.VehicleID] = true
			v, _ := s.fleet.Get(tr.VehicleID)
			if !v.InTransit() {
				t.Fatalf("vehicle %s on a trip but parked", tr.VehicleID)
			}
			for _, ref := range tr.Cargo.Refs() {
				if st := s.Shipment(ref).Status; st != model.StatusDispatched && st != model.StatusMissed {
					t.Fatalf("carried shipment %d is %s", ref, st)
				}
			}
		}
		for _, n := range model.Nodes {
			if v, ok := s.fleet.FindEligibleIdle(n, now); ok && seen[v.ID] {
				t.Fatalf("vehicle %s is both idle and in transit", v.ID)
			}
		}
		for i := range prev {
			cur := s.Shipment(i).Status
			if cur == model.StatusExcludedWarmup {
				prev[i] = cur
				continue
			}
			if rank(cur) < rank(prev[i]) || (prev[i] != cur && rank(prev[i]) == 2) {
				t.Fatalf("shipment %d went from %s to %s", i, prev[i], cur)
			}
			prev[i] = cur
		}
		before := s.Counts()
		if done, err := s.transit.SettleArrivals(now); err != nil || len(done) != 0 || s.Counts() != before {
			t.Fatalf("settling twice changed the ledger: %v %v", done, err)
		}
	}

	res := s.Result()
	carried := map[int]int{}
	for _, tr := range res.Trips() {
		for _, ref := range tr.Cargo.Refs() {
			carried[ref]++
		}
	}
	for ref, n := range carried {
		if n != 1 {
			t.Fatalf("shipment %d carried %d times", ref, n)
		}
	}
	for _, sh := range res.Shipments {
		if !sh.Arrival.IsZero() && !sh.Arrival.After(sh.Departure) {
			t.Fatalf("shipment %d arrives before it leaves", sh.Index)
		}
	}
	if res.Tally.Delivered == 0 || res.Loads.Total() == 0 {
		t.Fatalf("expected some traffic: %+v %+v", res.Tally, res.Loads)
	}
}
