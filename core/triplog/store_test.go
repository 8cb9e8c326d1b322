package triplog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/shuttle/core/model"
)

func sampleTrips() []model.Trip {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []model.Trip{
		{RunID: "r1", VehicleID: "mover-0000", Origin: model.NodeA, Destination: model.NodeB,
			Load: model.SizeFull, Cargo: model.SingleCargo(3), Departure: base, Arrival: base.Add(165 * time.Minute)},
		{RunID: "r1", VehicleID: "mover-0001", Origin: model.NodeB, Destination: model.NodeA,
			Load: model.SizeEmpty, Cargo: model.EmptyCargo(), Departure: base.Add(time.Hour)},
		{RunID: "r2", VehicleID: "mover-0000", Origin: model.NodeA, Destination: model.NodeB,
			Load: model.SizeFull, Cargo: model.PairedCargo(4, 7), Departure: base.Add(2 * time.Hour)},
	}
}

func TestQueryMatch(t *testing.T) {
	trips := sampleTrips()
	assert.True(t, Query{}.Match(trips[0]))
	assert.True(t, Query{RunID: "r1", Load: "full"}.Match(trips[0]))
	assert.False(t, Query{RunID: "r2"}.Match(trips[0]))
	assert.False(t, Query{VehicleID: "mover-0001"}.Match(trips[0]))
	assert.False(t, Query{Start: trips[1].Departure}.Match(trips[0]))
	assert.True(t, Query{End: trips[1].Departure}.Match(trips[1]))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.Error(t, Config{Backend: "jsonl"}.Validate())
	assert.Error(t, Config{Backend: "csv", Path: "x"}.Validate())
	s, err := Open(Config{})
	require.NoError(t, err)
	assert.Nil(t, s)
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	trips := sampleTrips()
	require.NoError(t, s.Append(ctx, trips[:2]...))
	require.NoError(t, s.Append(ctx, trips[2]))

	all, err := s.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, model.PairedCargo(4, 7), all[2].Cargo)
	assert.True(t, all[0].Arrival.Equal(trips[0].Arrival))
	assert.True(t, all[1].Arrival.IsZero())

	r1, err := s.Query(ctx, Query{RunID: "r1", VehicleID: "mover-0000"})
	require.NoError(t, err)
	require.Len(t, r1, 1)
	assert.Equal(t, model.NodeB, r1[0].Destination)

	late, err := s.Query(ctx, Query{Start: trips[1].Departure, Load: "full"})
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, "r2", late[0].RunID)
}

func TestRotatingJSONLStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trips.jsonl")
	s, err := Open(Config{Backend: "jsonl", Path: path})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.db")
	s, err := Open(Config{Backend: "sqlite", Path: path})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}
