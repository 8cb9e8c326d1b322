package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/shuttle/core/model"
)

func at(h, m int) time.Time { return time.Date(2024, 3, 4, h, m, 0, 0, time.UTC) }

func TestWorkingHoursDayAndNight(t *testing.T) {
	day := WorkingHours(model.ShiftPattern{StartHour: 7})
	night := WorkingHours(model.ShiftPattern{StartHour: 7, Night: true})
	worked := 0
	for h := 0; h < 24; h++ {
		assert.NotEqual(t, day[h], night[h], "hour %d", h)
		if day[h] {
			worked++
		}
	}
	assert.Equal(t, 12, worked)
	assert.True(t, day[7])
	assert.True(t, day[18])
	assert.False(t, day[19])
	assert.True(t, night[0])
	assert.True(t, night[23])
}

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("8n")
	require.NoError(t, err)
	assert.Equal(t, model.ShiftPattern{StartHour: 8, Night: true}, p)
	assert.Equal(t, "8n", p.String())

	_, err = ParsePattern("10m")
	assert.Error(t, err)
	_, err = ParsePattern("x")
	assert.Error(t, err)
}

func TestBucketWraps(t *testing.T) {
	assert.Equal(t, 23, Bucket(at(0, 10)))
	assert.Equal(t, 0, Bucket(at(0, 30)))
	assert.Equal(t, 9, Bucket(at(10, 29)))
}

func TestCanStartRequiresThreeWorkedBuckets(t *testing.T) {
	cal := NewCalendar(MealFixed, 1)
	v := &model.Vehicle{}
	cal.Assign(v, model.ShiftPattern{StartHour: 8})
	require.Equal(t, 11, v.MealHour)

	assert.True(t, cal.CanStart(v, at(10, 0)))
	// bucket 17: 17, 18 and 19 worked
	assert.True(t, cal.CanStart(v, at(18, 0)))
	// bucket 18 needs hour 20
	assert.False(t, cal.CanStart(v, at(18, 45)))
	// before the shift
	assert.False(t, cal.CanStart(v, at(7, 45)))
}

func TestCanStartBlocksMealHour(t *testing.T) {
	cal := NewCalendar(MealFixed, 1)
	v := &model.Vehicle{}
	cal.Assign(v, model.ShiftPattern{StartHour: 9})
	require.Equal(t, 12, v.MealHour)
	assert.False(t, cal.CanStart(v, at(12, 30)))
	assert.True(t, cal.CanStart(v, at(13, 30)))
}

func TestNightShiftAcrossMidnight(t *testing.T) {
	cal := NewCalendar(MealFixed, 1)
	v := &model.Vehicle{}
	cal.Assign(v, model.ShiftPattern{StartHour: 8, Night: true})
	assert.True(t, cal.CanStart(v, at(23, 45)))
	assert.False(t, cal.CanStart(v, at(1, 45)))
	assert.False(t, cal.CanStart(v, at(12, 0)))
}

func TestFixedMealIsStablePerVehicle(t *testing.T) {
	cal := NewCalendar(MealFixed, 42)
	v := &model.Vehicle{}
	cal.Assign(v, model.ShiftPattern{StartHour: 7})
	assert.Contains(t, []int{11, 12}, v.MealHour)
	first := cal.CanStart(v, at(11, 45))
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, cal.CanStart(v, at(11, 45)))
	}
}

func TestPerCallMealIsRedrawn(t *testing.T) {
	cal := NewCalendar(MealPerCall, 7)
	v := &model.Vehicle{}
	cal.Assign(v, model.ShiftPattern{StartHour: 7})
	assert.Equal(t, -1, v.MealHour)

	seen := map[bool]int{}
	for i := 0; i < 200; i++ {
		seen[cal.CanStart(v, at(11, 45))]++
	}
	assert.NotZero(t, seen[true])
	assert.NotZero(t, seen[false])
}

func TestMealPolicyValidate(t *testing.T) {
	assert.NoError(t, MealFixed.Validate())
	assert.NoError(t, MealPerCall.Validate())
	assert.Error(t, MealPolicy("sometimes").Validate())
}
