package geocode

import "fmt"

// UnavailableError means the geocoder could not answer, as opposed to answering "not found"
type UnavailableError struct {
	Message string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geocoder unavailable: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("geocoder unavailable: %s", e.Message)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func NewUnavailableError(message string, err error) *UnavailableError {
	return &UnavailableError{
		Message: message,
		Err:     err,
	}
}
