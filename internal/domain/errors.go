package domain

import (
	"fmt"
)

// TransportError is returned when a remote endpoint cannot be reached, answers
// with a non-success status or sends an undecodable body.
type TransportError struct {
	Endpoint string
	Status   int
	Cause    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s request failed (status = %d): %v", e.Endpoint, e.Status, e.Cause)
	}
	return fmt.Sprintf("%s request failed: %v", e.Endpoint, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError is returned when a response lacks a required field.
type MalformedResponseError struct {
	Endpoint string
	Field    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s response is malformed (missing field = %s)", e.Endpoint, e.Field)
}

// PreconditionError is returned when an action is invoked before its prerequisites hold.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}
