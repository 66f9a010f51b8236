package engine

// Status is the terminal outcome of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// RunResult is produced exactly once per run. A failed run names exactly one
// failing step and its tagged cause; Screenshot carries the path of the
// diagnostic snapshot when one was captured.
type RunResult struct {
	RunID      string    `json:"run_id"`
	Status     Status    `json:"status"`
	Step       string    `json:"step,omitempty"`
	Cause      *RunError `json:"cause,omitempty"`
	Screenshot string    `json:"screenshot,omitempty"`
}

func (r RunResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// PreconditionFailure builds the terminal result for an error detected
// before any step executed.
func PreconditionFailure(err *RunError) RunResult {
	return RunResult{
		Status: StatusFailed,
		Cause:  err,
	}
}
