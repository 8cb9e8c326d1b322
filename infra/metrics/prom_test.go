package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/shuttle/core/metrics"
	"github.com/kilianp07/shuttle/core/model"
)

func TestPromSink_RecordStep(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.RecordStep(coremetrics.StepEvent{
		RunID: "r", IdleA: 7, IdleB: 2, InTransit: 1,
		Backlog: model.DirectionCounts{ToA: 3},
		Demand:  model.DirectionCounts{ToB: 9},
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	expected := `
# HELP shuttle_idle_vehicles Vehicles parked at a node
# TYPE shuttle_idle_vehicles gauge
shuttle_idle_vehicles{node="A",run_id="r"} 7
shuttle_idle_vehicles{node="B",run_id="r"} 2
`
	if err := testutil.CollectAndCompare(sink.idle, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if v := testutil.ToFloat64(sink.inTransit.WithLabelValues("r")); v != 1 {
		t.Errorf("in transit = %v", v)
	}
	if v := testutil.ToFloat64(sink.demand.WithLabelValues("r", "to_b")); v != 9 {
		t.Errorf("demand to B = %v", v)
	}
}

func TestPromSink_RecordTripAndSummary(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	for i := 0; i < 3; i++ {
		_ = sink.RecordTrip(coremetrics.TripEvent{RunID: "r", Origin: model.NodeA, Load: model.SizeFull})
	}
	_ = sink.RecordTrip(coremetrics.TripEvent{RunID: "r", Origin: model.NodeB, Load: model.SizeHalf, Missed: 1})
	expected := `
# HELP shuttle_trips_total Trips started by origin node and load
# TYPE shuttle_trips_total counter
shuttle_trips_total{load="full",origin="A",run_id="r"} 3
shuttle_trips_total{load="half",origin="B",run_id="r"} 1
`
	if err := testutil.CollectAndCompare(sink.trips, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if v := testutil.ToFloat64(sink.missed.WithLabelValues("r", "B")); v != 1 {
		t.Errorf("missed = %v", v)
	}

	_ = sink.RecordSummary(coremetrics.SummaryEvent{RunID: "r", Delivered: 10, Pending: 2})
	if c := testutil.CollectAndCount(sink.shipments); c != 5 {
		t.Errorf("expected 5 status series, got %d", c)
	}
	if v := testutil.ToFloat64(sink.shipments.WithLabelValues("r", "delivered")); v != 10 {
		t.Errorf("delivered = %v", v)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.trips != second.trips {
		t.Fatal("expected the existing counter to be reused")
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	_ = sink.RecordTrip(coremetrics.TripEvent{RunID: "r", Origin: model.NodeA, Load: model.SizeEmpty})

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `shuttle_trips_total{load="empty",origin="A",run_id="r"} 1`) {
		t.Errorf("metrics body missing trip counter:\n%s", body)
	}
}
