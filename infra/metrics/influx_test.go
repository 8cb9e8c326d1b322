package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/shuttle/core/metrics"
	"github.com/kilianp07/shuttle/core/model"
)

type recorder struct {
	mu     sync.Mutex
	bodies []string
}

func (r *recorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		data, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.bodies = append(r.bodies, strings.TrimSpace(string(data)))
		r.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfluxSink_RecordStep(t *testing.T) {
	var rec recorder
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	ev := coremetrics.StepEvent{
		RunID: "run-1", Step: 12, Time: now, IdleA: 3, IdleB: 4, InTransit: 5,
		Backlog: model.DirectionCounts{ToA: 1, ToB: 2},
		Demand:  model.DirectionCounts{ToA: 6, ToB: 7},
	}
	if err := sink.RecordStep(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("fleet_state").
		AddTag("run_id", "run-1").
		AddField("step", 12).
		AddField("idle_a", 3).
		AddField("idle_b", 4).
		AddField("in_transit", 5).
		AddField("backlog_to_a", 1).
		AddField("backlog_to_b", 2).
		AddField("demand_to_a", 6).
		AddField("demand_to_b", 7).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(rec.bodies) != 1 || rec.bodies[0] != expected {
		t.Errorf("unexpected body: %v", rec.bodies)
	}
}

func TestInfluxSink_RecordTripAndSummary(t *testing.T) {
	var rec recorder
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()

	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	if err := sink.RecordTrip(coremetrics.TripEvent{
		RunID: "run-1", Step: 3, VehicleID: "mover-0002", Origin: model.NodeB,
		Load: model.SizeFull, Cargo: model.PairedCargo(1, 4), Missed: 1, Time: now,
	}); err != nil {
		t.Fatalf("trip error: %v", err)
	}
	if err := sink.RecordSummary(coremetrics.SummaryEvent{RunID: "run-1", Steps: 10, Delivered: 8, Time: now}); err != nil {
		t.Fatalf("summary error: %v", err)
	}
	if len(rec.bodies) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(rec.bodies))
	}
	for _, want := range []string{"trip,", "cargo=paired", "load=full", "origin=B", "vehicle_id=mover-0002", "missed=1i", "shipments=2i"} {
		if !strings.Contains(rec.bodies[0], want) {
			t.Errorf("trip point %q missing %q", rec.bodies[0], want)
		}
	}
	if !strings.HasPrefix(rec.bodies[1], "run_summary,run_id=run-1 ") || !strings.Contains(rec.bodies[1], "delivered=8i") {
		t.Errorf("unexpected summary point: %s", rec.bodies[1])
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
