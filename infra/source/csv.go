package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/shuttle/core/model"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
}

var columns = []string{"direction", "raw_size", "arrival_time", "deadline_hours"}

// ReadCSV decodes a CSV file whose header names the direction, raw_size,
// arrival_time and deadline_hours columns in any order. Extra columns are
// ignored.
func ReadCSV(r io.Reader) ([]model.Event, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("csv: missing column %q", c)
		}
	}
	var evs []model.Event
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return evs, nil
		}
		if err != nil {
			return nil, err
		}
		ev, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		evs = append(evs, ev)
	}
}

func parseRecord(rec []string, idx map[string]int) (model.Event, error) {
	var ev model.Event
	dir, err := model.ParseDirection(rec[idx["direction"]])
	if err != nil {
		return ev, err
	}
	size, err := strconv.ParseFloat(strings.TrimSpace(rec[idx["raw_size"]]), 64)
	if err != nil {
		return ev, fmt.Errorf("raw_size: %w", err)
	}
	at, err := parseTime(rec[idx["arrival_time"]])
	if err != nil {
		return ev, err
	}
	deadline, err := strconv.ParseFloat(strings.TrimSpace(rec[idx["deadline_hours"]]), 64)
	if err != nil {
		return ev, fmt.Errorf("deadline_hours: %w", err)
	}
	return model.Event{Direction: dir, RawSize: size, ArrivalTime: at, DeadlineHours: deadline}, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("arrival_time: cannot parse %q", s)
}
