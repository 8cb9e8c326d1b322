package dispatch

import (
	"time"

	"github.com/kilianp07/shuttle/core/shift"
)

// Config defines the parameters of one simulation run.
type Config struct {
	InitialFleetAtNodeA int `json:"initial_fleet_at_node_a"`
	InitialFleetAtNodeB int `json:"initial_fleet_at_node_b"`

	// UrgentDeadlineThresholdHours sends a shipment regardless of its size
	// once its remaining deadline drops below it.
	UrgentDeadlineThresholdHours float64 `json:"urgent_deadline_threshold_hours"`
	// BacklogCountThreshold triggers rebalancing toward a congested origin.
	BacklogCountThreshold int `json:"backlog_count_threshold"`
	// ForwardDemandThreshold lets a lone half load leave when demand for the
	// trip back is high and its destination is short of movers.
	ForwardDemandThreshold       int     `json:"forward_demand_threshold"`
	EmptyDispatchDemandThreshold int     `json:"empty_dispatch_demand_threshold"`
	ForwardDemandHorizonHours    float64 `json:"forward_demand_horizon_hours"`
	HalfFleetThreshold           int     `json:"half_fleet_threshold"`
	// EmptyMovementPressureThreshold caps the movers already available or
	// inbound at a node before more empties are sent there.
	EmptyMovementPressureThreshold int `json:"empty_movement_pressure_threshold"`
	EmptyMoveBatchSize             int `json:"empty_move_batch_size"`

	TotalSteps         int `json:"total_steps"`
	BacklogWindowSteps int `json:"backlog_window_steps"`
	// WarmupCutoverStep of zero disables the cutover.
	WarmupCutoverStep      int `json:"warmup_cutover_step"`
	PaddingSteps           int `json:"padding_steps"`
	PaddingIntervalMinutes int `json:"padding_interval_minutes"`

	SizeCutoff   float64 `json:"size_cutoff"`
	MountMinutes int     `json:"mount_minutes"`
	// StopWhenResolved ends the run once every real shipment has been
	// handled instead of processing the whole sequence.
	StopWhenResolved bool             `json:"stop_when_resolved"`
	MealPolicy       shift.MealPolicy `json:"meal_policy"`
	Seed             int64            `json:"seed"`
}

// DefaultConfig returns the reference parameters of the corridor model.
// TotalSteps is left at zero and must be set for the input at hand.
func DefaultConfig() Config {
	return Config{
		InitialFleetAtNodeA:            150,
		InitialFleetAtNodeB:            150,
		UrgentDeadlineThresholdHours:   12,
		BacklogCountThreshold:          58,
		ForwardDemandThreshold:         55,
		EmptyDispatchDemandThreshold:   75,
		ForwardDemandHorizonHours:      2,
		HalfFleetThreshold:             25,
		EmptyMovementPressureThreshold: 2,
		EmptyMoveBatchSize:             1,
		BacklogWindowSteps:             100,
		WarmupCutoverStep:              250,
		PaddingIntervalMinutes:         5,
		SizeCutoff:                     22,
		MountMinutes:                   15,
		MealPolicy:                     shift.MealFixed,
		Seed:                           1,
	}
}

// SetDefaults fills structural settings that cannot meaningfully be zero.
func (c *Config) SetDefaults() {
	if c.SizeCutoff == 0 {
		c.SizeCutoff = 22
	}
	if c.MountMinutes == 0 {
		c.MountMinutes = 15
	}
	if c.PaddingIntervalMinutes == 0 {
		c.PaddingIntervalMinutes = 5
	}
	if c.ForwardDemandHorizonHours == 0 {
		c.ForwardDemandHorizonHours = 2
	}
	if c.MealPolicy == "" {
		c.MealPolicy = shift.MealFixed
	}
}

// Steps returns the sequence length including padding.
func (c Config) Steps() int { return c.TotalSteps + c.PaddingSteps }

// Mount returns the time spent loading before a shipment leaves.
func (c Config) Mount() time.Duration { return time.Duration(c.MountMinutes) * time.Minute }

// Validate checks the configuration. Every error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.InitialFleetAtNodeA < 0 || c.InitialFleetAtNodeB < 0:
		return invalid("initial fleet counts must not be negative")
	case c.InitialFleetAtNodeA+c.InitialFleetAtNodeB <= 0:
		return invalid("fleet size must be positive")
	case c.TotalSteps <= 0:
		return invalid("total_steps must be positive")
	case c.PaddingSteps < 0:
		return invalid("padding_steps must not be negative")
	case c.BacklogWindowSteps < 0 || c.BacklogWindowSteps >= c.Steps():
		return invalid("backlog_window_steps %d outside [0, %d)", c.BacklogWindowSteps, c.Steps())
	case c.WarmupCutoverStep < 0 || c.WarmupCutoverStep > c.TotalSteps:
		return invalid("warmup_cutover_step %d beyond total_steps %d", c.WarmupCutoverStep, c.TotalSteps)
	case c.WarmupCutoverStep > 0 && c.WarmupCutoverStep < c.BacklogWindowSteps:
		return invalid("warmup_cutover_step %d before backlog_window_steps %d", c.WarmupCutoverStep, c.BacklogWindowSteps)
	case c.UrgentDeadlineThresholdHours < 0:
		return invalid("urgent_deadline_threshold_hours must not be negative")
	case c.BacklogCountThreshold < 0 || c.ForwardDemandThreshold < 0 || c.EmptyDispatchDemandThreshold < 0:
		return invalid("count thresholds must not be negative")
	case c.HalfFleetThreshold < 0 || c.EmptyMovementPressureThreshold < 0:
		return invalid("fleet thresholds must not be negative")
	case c.EmptyMoveBatchSize < 0:
		return invalid("empty_move_batch_size must not be negative")
	case c.ForwardDemandHorizonHours <= 0:
		return invalid("forward_demand_horizon_hours must be positive")
	case c.SizeCutoff <= 0:
		return invalid("size_cutoff must be positive")
	case c.MountMinutes < 0 || c.PaddingIntervalMinutes <= 0:
		return invalid("mount and padding intervals must be positive")
	}
	if err := c.MealPolicy.Validate(); err != nil {
		return invalid("%v", err)
	}
	return nil
}
