package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var _ context.Context = &RunContext{}

// Credentials are the two opaque secrets the target's login form expects.
type Credentials struct {
	Email    string
	Password string
}

// RunContext bundles the live resources and inputs of one run. It owns the
// page handle exclusively for the run's full lifetime and is never shared
// across concurrent runs; the workflow definition itself is read-only and
// safely shared. Immutable after construction.
type RunContext struct {
	ID    string
	Page  Page
	Creds Credentials

	// Resume resolves the upload file lazily at the upload step.
	Resume FileSource

	ctx context.Context // real context carrying deadline/cancellation
}

func NewRunContext(ctx context.Context, page Page, creds Credentials, resume FileSource) *RunContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &RunContext{
		ID:     uuid.New().String(),
		Page:   page,
		Creds:  creds,
		Resume: resume,
		ctx:    ctx,
	}
}

// context.Context implementation delegates to the embedded ctx so run-level
// cancellation propagates through slog calls and every page operation.

func (r *RunContext) Deadline() (deadline time.Time, ok bool) {
	return r.ctx.Deadline()
}

func (r *RunContext) Done() <-chan struct{} {
	return r.ctx.Done()
}

func (r *RunContext) Err() error {
	return r.ctx.Err()
}

func (r *RunContext) Value(key any) any {
	return r.ctx.Value(key)
}
