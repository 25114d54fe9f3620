package analysis

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed or out-of-range command field.
// The session fails and the command is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidStateError reports a command that is not valid in the session's
// current state, such as a second analyze while a run is active.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return e.Reason
}

// StepError reports a named pipeline step failure. The run terminates and
// no partial result is emitted.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ErrorType returns the wire discriminator for an error, used as the
// error_type field in error events.
func ErrorType(err error) string {
	var ve *ValidationError
	var se *StepError
	var ie *InvalidStateError
	switch {
	case errors.As(err, &ve):
		return "ValidationError"
	case errors.As(err, &ie):
		return "InvalidStateError"
	case errors.As(err, &se):
		return "PipelineStepError"
	default:
		return "InternalError"
	}
}
