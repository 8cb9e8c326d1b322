package metrics

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordStep forwards the step to all sinks, returning the first error.
func (m *MultiSink) RecordStep(ev StepEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordStep(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTrip forwards trips to the sinks that record them.
func (m *MultiSink) RecordTrip(ev TripEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TripRecorder); ok {
			if err := rec.RecordTrip(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSummary forwards summaries to the sinks that record them.
func (m *MultiSink) RecordSummary(ev SummaryEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SummaryRecorder); ok {
			if err := rec.RecordSummary(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
