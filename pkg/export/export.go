// Package export writes the departure and arrival of every moved shipment.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/shuttle/core/model"
)

// Row is the exported view of one shipment.
type Row struct {
	Index         int       `json:"index"`
	Direction     string    `json:"direction"`
	Status        string    `json:"status"`
	Vehicle       string    `json:"vehicle"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Departure     time.Time `json:"departure"`
	Arrival       time.Time `json:"arrival"`
	DeadlineHours float64   `json:"deadline_hours"`
	ExcessHours   float64   `json:"excess_hours"`
}

// Rows converts shipments into export rows.
func Rows(shipments []model.Shipment) []Row {
	rows := make([]Row, len(shipments))
	for i, s := range shipments {
		rows[i] = Row{
			Index:         s.Index,
			Direction:     s.Direction.String(),
			Status:        s.Status.String(),
			Vehicle:       s.Vehicle,
			ArrivalTime:   s.ArrivalTime,
			Departure:     s.Departure,
			Arrival:       s.Arrival,
			DeadlineHours: s.DeadlineHours,
			ExcessHours:   s.Excess,
		}
	}
	return rows
}

// WriteJSON writes the shipments to w as a JSON array.
func WriteJSON(w io.Writer, shipments []model.Shipment) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Rows(shipments))
}

// WriteCSV writes the shipments to w with a header line.
func WriteCSV(w io.Writer, shipments []model.Shipment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "direction", "status", "vehicle", "arrival_time", "departure", "arrival", "deadline_hours", "excess_hours"}); err != nil {
		return err
	}
	for _, r := range Rows(shipments) {
		rec := []string{
			strconv.Itoa(r.Index),
			r.Direction,
			r.Status,
			r.Vehicle,
			r.ArrivalTime.Format(time.RFC3339),
			r.Departure.Format(time.RFC3339),
			r.Arrival.Format(time.RFC3339),
			strconv.FormatFloat(r.DeadlineHours, 'f', -1, 64),
			strconv.FormatFloat(r.ExcessHours, 'f', 3, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Config selects the export destination.
type Config struct {
	Path string `json:"path"`
	// Format is "csv" or "json". Empty infers it from the extension.
	Format string `json:"format"`
}

// Validate checks the format. An empty path disables the export.
func (c Config) Validate() error {
	if c.Path == "" {
		return nil
	}
	_, err := c.format()
	return err
}

func (c Config) format() (string, error) {
	f := strings.ToLower(c.Format)
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(c.Path)), ".")
	}
	if f != "csv" && f != "json" {
		return "", fmt.Errorf("export: unsupported format %q", f)
	}
	return f, nil
}

// WriteFile exports the shipments to cfg.Path.
func WriteFile(cfg Config, shipments []model.Shipment) (err error) {
	format, err := cfg.format()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if format == "csv" {
		return WriteCSV(f, shipments)
	}
	return WriteJSON(f, shipments)
}
