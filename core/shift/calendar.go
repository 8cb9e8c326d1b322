package shift

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/shuttle/core/model"
)

// MealPolicy controls how often the meal hour of a multi-slot pattern is drawn.
type MealPolicy string

const (
	// MealFixed draws the meal hour once per vehicle when it is assigned a shift.
	MealFixed MealPolicy = "fixed"
	// MealPerCall draws the meal hour again on every availability check.
	MealPerCall MealPolicy = "per_call"
)

// Validate checks the policy name.
func (p MealPolicy) Validate() error {
	switch p {
	case MealFixed, MealPerCall:
		return nil
	default:
		return fmt.Errorf("unknown meal policy %q", string(p))
	}
}

const shiftLength = 12

type patternDef struct {
	pattern model.ShiftPattern
	meals   []int
}

// Day shifts eat around noon, night shifts in the early morning. Patterns
// starting at 7 alternate between two slots.
var patterns = []patternDef{
	{pattern: model.ShiftPattern{StartHour: 7}, meals: []int{11, 12}},
	{pattern: model.ShiftPattern{StartHour: 7, Night: true}, meals: []int{1, 2}},
	{pattern: model.ShiftPattern{StartHour: 8}, meals: []int{11}},
	{pattern: model.ShiftPattern{StartHour: 8, Night: true}, meals: []int{1}},
	{pattern: model.ShiftPattern{StartHour: 9}, meals: []int{12}},
	{pattern: model.ShiftPattern{StartHour: 9, Night: true}, meals: []int{2}},
}

// Patterns returns the canonical patterns in fleet assignment order.
func Patterns() []model.ShiftPattern {
	out := make([]model.ShiftPattern, len(patterns))
	for i, p := range patterns {
		out[i] = p.pattern
	}
	return out
}

// ParsePattern parses labels such as "7m" (day) or "9n" (night).
func ParsePattern(label string) (model.ShiftPattern, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if len(label) < 2 {
		return model.ShiftPattern{}, fmt.Errorf("invalid shift label %q", label)
	}
	hour, err := strconv.Atoi(label[:len(label)-1])
	if err != nil {
		return model.ShiftPattern{}, fmt.Errorf("invalid shift label %q: %w", label, err)
	}
	var p model.ShiftPattern
	switch label[len(label)-1] {
	case 'm', 'd':
		p = model.ShiftPattern{StartHour: hour}
	case 'n':
		p = model.ShiftPattern{StartHour: hour, Night: true}
	default:
		return model.ShiftPattern{}, fmt.Errorf("invalid shift label %q", label)
	}
	if _, ok := lookup(p); !ok {
		return model.ShiftPattern{}, fmt.Errorf("unknown shift pattern %q", label)
	}
	return p, nil
}

func lookup(p model.ShiftPattern) (patternDef, bool) {
	for _, d := range patterns {
		if d.pattern == p {
			return d, true
		}
	}
	return patternDef{}, false
}

// WorkingHours builds the 24-slot bitmap for a pattern.
func WorkingHours(p model.ShiftPattern) [24]bool {
	var hours [24]bool
	for h := 0; h < 24; h++ {
		day := h >= p.StartHour && h < p.StartHour+shiftLength
		hours[h] = day != p.Night
	}
	return hours
}

// MealCandidates returns the candidate meal hours of a pattern.
func MealCandidates(p model.ShiftPattern) []int {
	d, ok := lookup(p)
	if !ok {
		return nil
	}
	return append([]int(nil), d.meals...)
}

// Calendar answers availability questions for vehicles. It is not safe for
// concurrent use; each simulation owns its own calendar.
type Calendar struct {
	policy MealPolicy
	rng    *rand.Rand
}

// NewCalendar returns a calendar drawing meal hours from a generator seeded
// with seed.
func NewCalendar(policy MealPolicy, seed int64) *Calendar {
	if policy == "" {
		policy = MealFixed
	}
	return &Calendar{policy: policy, rng: rand.New(rand.NewSource(seed))}
}

// Policy returns the configured meal policy.
func (c *Calendar) Policy() MealPolicy { return c.policy }

// Assign puts v on pattern p, filling its bitmap and meal hour.
func (c *Calendar) Assign(v *model.Vehicle, p model.ShiftPattern) {
	v.Shift = p
	v.WorkingHours = WorkingHours(p)
	v.MealHour = -1
	if c.policy == MealFixed {
		v.MealHour = c.draw(p)
	}
}

func (c *Calendar) draw(p model.ShiftPattern) int {
	meals := MealCandidates(p)
	switch len(meals) {
	case 0:
		return -1
	case 1:
		return meals[0]
	default:
		return meals[c.rng.Intn(len(meals))]
	}
}

// Bucket returns the hour bucket used for availability at t: the previous
// hour during the first half of an hour.
func Bucket(t time.Time) int {
	h := t.Hour()
	if t.Minute() < 30 {
		h--
		if h < 0 {
			h = 23
		}
	}
	return h
}

// CanStart reports whether v may start a trip at t. The bucket and the two
// following buckets must be worked, the bucket must not be the meal hour and
// the hour after the meal must be worked.
func (c *Calendar) CanStart(v *model.Vehicle, t time.Time) bool {
	h := Bucket(t)
	w := v.WorkingHours
	if !w[h] || !w[(h+1)%24] || !w[(h+2)%24] {
		return false
	}
	meal := v.MealHour
	if meal < 0 {
		meal = c.draw(v.Shift)
	}
	if meal < 0 {
		return true
	}
	return h != meal && w[(meal+1)%24]
}
