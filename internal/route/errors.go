package route

import "fmt"

// RoutingError covers every way a route request can fail. It never affects the
// station answer the route was requested for.
type RoutingError struct {
	Message string
	Err     error
}

func (e *RoutingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("routing error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("routing error: %s", e.Message)
}

func (e *RoutingError) Unwrap() error {
	return e.Err
}

func NewRoutingError(message string, err error) *RoutingError {
	return &RoutingError{
		Message: message,
		Err:     err,
	}
}
