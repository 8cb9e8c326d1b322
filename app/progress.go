package app

import (
	"github.com/kilianp07/shuttle/core/events"
	"github.com/kilianp07/shuttle/infra/logger"
	"github.com/kilianp07/shuttle/internal/eventbus"
)

// LogProgress logs run lifecycle events from bus until the bus is closed.
// The returned channel is closed once the subscriber has drained.
func LogProgress(bus eventbus.EventBus, log logger.Logger) <-chan struct{} {
	ch := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			switch e := ev.(type) {
			case events.ProgressEvent:
				log.Infof("run %s: %d%% (step %d of %d)", e.RunID, e.Percent, e.Step, e.Total)
			case events.CutoverEvent:
				log.Infof("run %s: warm-up cutover at step %d excluded %d shipments", e.RunID, e.Step, e.Excluded)
			case events.DoneEvent:
				log.Infof("run %s: done after %d steps (%s)", e.RunID, e.Steps, e.Reason)
			}
		}
	}()
	return done
}
