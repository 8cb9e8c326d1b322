package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/shuttle/core/metrics"
	"github.com/kilianp07/shuttle/infra/logger"
)

// InfluxSink writes simulation points to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStep writes a fleet_state point.
func (s *InfluxSink) RecordStep(ev coremetrics.StepEvent) error {
	p := write.NewPointWithMeasurement("fleet_state").
		AddTag("run_id", ev.RunID).
		AddField("step", ev.Step).
		AddField("idle_a", ev.IdleA).
		AddField("idle_b", ev.IdleB).
		AddField("in_transit", ev.InTransit).
		AddField("backlog_to_a", ev.Backlog.ToA).
		AddField("backlog_to_b", ev.Backlog.ToB).
		AddField("demand_to_a", ev.Demand.ToA).
		AddField("demand_to_b", ev.Demand.ToB).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordTrip writes a trip point.
func (s *InfluxSink) RecordTrip(ev coremetrics.TripEvent) error {
	p := write.NewPointWithMeasurement("trip").
		AddTag("run_id", ev.RunID).
		AddTag("vehicle_id", ev.VehicleID).
		AddTag("origin", ev.Origin.String()).
		AddTag("load", ev.Load.String()).
		AddTag("cargo", ev.Cargo.Kind.String()).
		AddField("step", ev.Step).
		AddField("shipments", len(ev.Cargo.Refs())).
		AddField("missed", ev.Missed).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordSummary writes a run_summary point.
func (s *InfluxSink) RecordSummary(ev coremetrics.SummaryEvent) error {
	p := write.NewPointWithMeasurement("run_summary").
		AddTag("run_id", ev.RunID).
		AddField("steps", ev.Steps).
		AddField("full_trips", ev.FullTrips).
		AddField("half_trips", ev.HalfTrips).
		AddField("empty_trips", ev.EmptyTrips).
		AddField("delivered", ev.Delivered).
		AddField("in_transit", ev.InTransit).
		AddField("pending", ev.Pending).
		AddField("missed", ev.Missed).
		AddField("excluded", ev.Excluded).
		SetTime(ev.Time)
	return s.write(p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
