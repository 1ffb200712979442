package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("application not found")
	ErrInvalidStatus = errors.New("invalid status")
)

// SubmissionError reports a submission that was rejected before anything was
// committed to the store.
type SubmissionError struct {
	Reason string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return "submission rejected: " + e.Reason
	}
	return fmt.Sprintf("submission rejected: %s: %v", e.Reason, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func NewSubmissionError(reason string, err error) error {
	return &SubmissionError{Reason: reason, Err: err}
}

func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}
