package dispatch

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidConfig is wrapped by every configuration validation error.
	ErrInvalidConfig = errors.New("dispatch: invalid configuration")
	// ErrInputOrder matches any InputOrderError.
	ErrInputOrder = errors.New("dispatch: input sequence out of order")
)

// InputOrderError reports a record arriving before its predecessor.
type InputOrderError struct {
	Index int
	Prev  time.Time
	Got   time.Time
}

func (e *InputOrderError) Error() string {
	return fmt.Sprintf("dispatch: record %d arrives at %s before previous record at %s",
		e.Index, e.Got.Format(time.RFC3339), e.Prev.Format(time.RFC3339))
}

// Is makes errors.Is(err, ErrInputOrder) match.
func (e *InputOrderError) Is(target error) bool { return target == ErrInputOrder }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
