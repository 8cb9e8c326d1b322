package triplog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/shuttle/core/model"
)

// SQLiteStore persists trips to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS trips (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        vehicle_id TEXT NOT NULL,
        origin TEXT,
        destination TEXT,
        load_class TEXT,
        departure INTEGER,
        arrival INTEGER,
        cargo TEXT
    );
    CREATE INDEX IF NOT EXISTS trips_run ON trips (run_id, departure);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}

// Append writes the trips in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, trips ...model.Trip) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trips (run_id, vehicle_id, origin, destination, load_class, departure, arrival, cargo)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, t := range trips {
		cargo, err := json.Marshal(t.Cargo)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, t.RunID, t.VehicleID, t.Origin.String(), t.Destination.String(),
			t.Load.String(), unixOrZero(t.Departure), unixOrZero(t.Arrival), string(cargo)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Query returns trips matching q ordered by departure.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]model.Trip, error) {
	var args []any
	query := `SELECT run_id, vehicle_id, origin, destination, load_class, departure, arrival, cargo FROM trips WHERE 1=1`
	if q.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, q.RunID)
	}
	if q.VehicleID != "" {
		query += ` AND vehicle_id = ?`
		args = append(args, q.VehicleID)
	}
	if q.Load != "" {
		query += ` AND load_class = ?`
		args = append(args, q.Load)
	}
	if !q.Start.IsZero() {
		query += ` AND departure >= ?`
		args = append(args, q.Start.Unix())
	}
	if !q.End.IsZero() {
		query += ` AND departure <= ?`
		args = append(args, q.End.Unix())
	}
	query += ` ORDER BY departure, id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Trip
	for rows.Next() {
		var (
			t                model.Trip
			origin, dest, ld string
			dep, arr         int64
			cargo            string
		)
		if err := rows.Scan(&t.RunID, &t.VehicleID, &origin, &dest, &ld, &dep, &arr, &cargo); err != nil {
			return nil, err
		}
		if err := t.Origin.UnmarshalText([]byte(origin)); err != nil {
			return nil, err
		}
		if err := t.Destination.UnmarshalText([]byte(dest)); err != nil {
			return nil, err
		}
		if err := t.Load.UnmarshalText([]byte(ld)); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(cargo), &t.Cargo); err != nil {
			return nil, fmt.Errorf("unmarshal cargo: %w", err)
		}
		t.Departure, t.Arrival = fromUnix(dep), fromUnix(arr)
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
