package chat

import (
	"errors"
	"fmt"
)

// ValidationError rejects a send before anything is read or written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Reason }

// SendRejected means policy refused the send. Nothing was written.
type SendRejected struct {
	Reason string
	Err    error
}

func (e *SendRejected) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("send rejected: %s: %v", e.Reason, e.Err)
	}
	return "send rejected: " + e.Reason
}

func (e *SendRejected) Unwrap() error { return e.Err }

// PersistenceFault reports a storage failure part-way through a send.
// Stage tells which write failed; earlier writes may already be committed.
type PersistenceFault struct {
	Stage string
	Err   error
}

func (e *PersistenceFault) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Stage, e.Err)
}

func (e *PersistenceFault) Unwrap() error { return e.Err }

// PublicMessage is the text shown to the sender for err. Storage details
// never leave the server.
func PublicMessage(err error) string {
	var (
		validation *ValidationError
		rejected   *SendRejected
	)
	switch {
	case errors.As(err, &validation):
		return validation.Reason
	case errors.As(err, &rejected):
		if rejected.Err != nil {
			return "message could not be sent"
		}
		return rejected.Reason
	default:
		return "failed to send message"
	}
}
