package feed

import "fmt"

// SchemaError means a document is not a GBFS feed of the expected shape
type SchemaError struct {
	Message string
	Err     error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feed schema error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("feed schema error: %s", e.Message)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func NewSchemaError(message string, err error) *SchemaError {
	return &SchemaError{
		Message: message,
		Err:     err,
	}
}

// HTTPStatusError is returned when a feed URL answers with a non-2xx status
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("feed %s returned status %d", e.URL, e.StatusCode)
}
