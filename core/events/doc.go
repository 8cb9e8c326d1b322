// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - ProgressEvent: a tenth of the run has been processed
//   - CutoverEvent: the warm-up cutover was applied
//   - DoneEvent: the run reached its terminal state
package events
