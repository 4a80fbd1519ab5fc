package station

import (
	"fmt"
	"strings"
)

// NoEligibleStationError is returned when no station satisfies the requested availability
type NoEligibleStationError struct {
	Message string
	Modes   []string
}

func (e *NoEligibleStationError) Error() string {
	if len(e.Modes) > 0 {
		return fmt.Sprintf("no eligible station: %s (modes: %s)", e.Message, strings.Join(e.Modes, ","))
	}
	return fmt.Sprintf("no eligible station: %s", e.Message)
}

func NewNoEligibleStationError(message string, modes []string) *NoEligibleStationError {
	return &NoEligibleStationError{
		Message: message,
		Modes:   modes,
	}
}

// InvalidModesError is returned when a bike search names no modes
type InvalidModesError struct {
	Message string
}

func (e *InvalidModesError) Error() string {
	return e.Message
}

// UnknownSystemError is returned when a query names a system that is not configured
type UnknownSystemError struct {
	SystemID string
}

func (e *UnknownSystemError) Error() string {
	return fmt.Sprintf("unknown bikeshare system: %q", e.SystemID)
}
