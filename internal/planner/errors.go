package planner

import "fmt"

// AddressNotFoundError means the query address could not be turned into coordinates.
// Err is set when the geocoder was unavailable rather than answering "not found".
type AddressNotFoundError struct {
	Address string
	Err     error
}

func (e *AddressNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no coordinates for address %q: %v", e.Address, e.Err)
	}
	return fmt.Sprintf("address not found: %q", e.Address)
}

func (e *AddressNotFoundError) Unwrap() error {
	return e.Err
}

// Error when a query is incomplete or contradictory
type InvalidQueryError struct {
	Message string
}

func (e *InvalidQueryError) Error() string {
	return e.Message
}

func NewInvalidQueryError(message string) *InvalidQueryError {
	return &InvalidQueryError{
		Message: message,
	}
}
