// Package metrics defines the sink interface the simulation reports to.
//
// Every sink records per-step fleet state. Sinks may additionally implement
// TripRecorder and SummaryRecorder; callers check with a type assertion.
// Several sinks are combined with NewMultiSink, and NewMetricsSink builds one
// from configuration using the factories registered by infra/metrics.
package metrics
