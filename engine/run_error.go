package engine

import "fmt"

// ErrorKind classifies a run failure so callers can branch on cause without
// inspecting message strings.
type ErrorKind string

const (
	// ErrorKindPrecondition covers failures detected before or at the
	// point of use: missing credentials, no eligible upload file, target
	// unreachable. Nothing meaningful is on screen, so no diagnostic
	// capture is attempted.
	ErrorKindPrecondition ErrorKind = "precondition"

	// ErrorKindElementNotFound means no visible element matched any
	// configured strategy within the step's budget.
	ErrorKindElementNotFound ErrorKind = "element_not_found"

	// ErrorKindPostconditionTimeout means the action was performed but the
	// expected observable effect did not materialize in time. Distinct
	// from resolution failures because the action may have partially
	// succeeded server-side.
	ErrorKindPostconditionTimeout ErrorKind = "postcondition_timeout"

	// ErrorKindActionFailed means the action itself was rejected by the
	// automation layer (navigation error, click dispatch failure).
	ErrorKindActionFailed ErrorKind = "action_failed"
)

// RunError is the canonical error value propagated out of a run.
// It is JSON-serializable so HTTP callers receive the same tagged cause the
// engine produced.
type RunError struct {
	Kind    ErrorKind `json:"kind"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *RunError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("[%s] %s (step: %s)", e.Kind, e.Message, e.Step)
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *RunError) Unwrap() error {
	return e.Cause
}

// Preconditionf builds a precondition RunError not tied to any step.
func Preconditionf(cause error, format string, args ...any) *RunError {
	return &RunError{
		Kind:    ErrorKindPrecondition,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}
