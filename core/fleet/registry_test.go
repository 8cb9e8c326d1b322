package fleet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/shuttle/core/model"
	"github.com/kilianp07/shuttle/core/shift"
)

func at(h, m int) time.Time {
	return time.Date(2024, 3, 4, h, m, 0, 0, time.UTC)
}

func dayOnly(atA, atB int) *Registry {
	spec := Spec{AtA: atA, AtB: atB, Patterns: []model.ShiftPattern{{StartHour: 8}}}
	return NewRegistry(spec, shift.NewCalendar(shift.MealFixed, 1))
}

func TestNewRegistrySpreadsPatterns(t *testing.T) {
	r := NewRegistry(Spec{AtA: 12, AtB: 6}, shift.NewCalendar(shift.MealFixed, 1))
	require.Equal(t, 18, r.Len())
	assert.Equal(t, 12, r.IdleAt(model.NodeA))
	assert.Equal(t, 6, r.IdleAt(model.NodeB))

	perPattern := map[string]int{}
	for _, v := range r.Vehicles()[:12] {
		assert.Equal(t, model.NodeA, v.Home)
		perPattern[v.Shift.String()]++
	}
	for _, p := range shift.Patterns() {
		assert.Equal(t, 2, perPattern[p.String()], p.String())
	}
	v, ok := r.Get("mover-0013")
	require.True(t, ok)
	assert.Equal(t, model.NodeB, v.Home)
	assert.Equal(t, "7m", v.Shift.String())
}

func TestFindEligibleIdlePrefersUnused(t *testing.T) {
	r := dayOnly(3, 0)
	vs := r.Vehicles()
	vs[0].Log = make([]model.TripLogEntry, 2)
	v, ok := r.FindEligibleIdle(model.NodeA, at(10, 0))
	require.True(t, ok)
	assert.Equal(t, "mover-0002", v.ID)
}

func TestFindEligibleIdleFewestDispatches(t *testing.T) {
	r := dayOnly(3, 0)
	vs := r.Vehicles()
	vs[0].Log = make([]model.TripLogEntry, 2)
	vs[1].Log = make([]model.TripLogEntry, 1)
	vs[2].Log = make([]model.TripLogEntry, 1)
	v, ok := r.FindEligibleIdle(model.NodeA, at(10, 0))
	require.True(t, ok)
	assert.Equal(t, "mover-0002", v.ID)
}

func TestFindEligibleIdleRespectsShiftAndLocation(t *testing.T) {
	r := dayOnly(1, 0)
	_, ok := r.FindEligibleIdle(model.NodeB, at(10, 0))
	assert.False(t, ok)
	_, ok = r.FindEligibleIdle(model.NodeA, at(3, 0))
	assert.False(t, ok)
}

func TestDispatchedVehicleIsNotEligible(t *testing.T) {
	r := dayOnly(1, 0)
	v, ok := r.FindEligibleIdle(model.NodeA, at(10, 0))
	require.True(t, ok)
	require.NoError(t, r.MarkDispatched(v.ID, model.NodeB, at(10, 0), model.SizeFull, model.SingleCargo(4)))
	_, ok = r.FindEligibleIdle(model.NodeA, at(10, 5))
	assert.False(t, ok)
	assert.ErrorIs(t, r.MarkDispatched(v.ID, model.NodeB, at(10, 5), model.SizeFull, model.EmptyCargo()), ErrInvalidState)
}

func TestMarkArrivedParksAtDestination(t *testing.T) {
	r := dayOnly(1, 0)
	id := r.Vehicles()[0].ID
	require.NoError(t, r.MarkDispatched(id, model.NodeB, at(10, 0), model.SizeHalf, model.SingleCargo(1)))
	require.NoError(t, r.MarkArrived(id, at(12, 30)))

	v, _ := r.Get(id)
	assert.True(t, v.Idle(model.NodeB))
	assert.Equal(t, 1, v.Trips.Half)
	assert.Equal(t, []model.Node{model.NodeB}, v.Trips.Destinations)
	require.Len(t, v.Log, 1)
	assert.Equal(t, at(12, 30), v.Log[0].Arrival)
	assert.ErrorIs(t, r.MarkArrived(id, at(13, 0)), ErrInvalidState)
	assert.ErrorIs(t, r.MarkArrived("nope", at(13, 0)), ErrUnknownVehicle)
}
