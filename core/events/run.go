package events

// ProgressEvent is published ten times per run, at evenly spaced steps.
type ProgressEvent struct {
	RunID   string
	Step    int
	Total   int
	Percent int
}

// CutoverEvent is published when warm-up statistics are discarded.
type CutoverEvent struct {
	RunID    string
	Step     int
	Excluded int
}

// DoneEvent is published once per run. Reason is "exhausted" when the whole
// sequence was processed and "resolved" when the run stopped because nothing
// was left pending.
type DoneEvent struct {
	RunID  string
	Steps  int
	Reason string
}
