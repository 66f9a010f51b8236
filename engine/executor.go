package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const postPollInterval = 250 * time.Millisecond

// Executor drives an ordered sequence of steps against one run's page.
// Transitions are strictly forward: each step runs exactly once, in declared
// order, and the first unrecoverable failure aborts the whole remaining
// sequence. The two terminal states are the Succeeded and Failed results.
type Executor struct {
	l             *slog.Logger
	resolver      *Resolver
	screenshotDir string
}

func NewExecutor(l *slog.Logger, resolver *Resolver, screenshotDir string) *Executor {
	return &Executor{
		l:             l,
		resolver:      resolver,
		screenshotDir: screenshotDir,
	}
}

// Run executes steps sequentially and returns the run's single terminal
// result. On failure it performs a best-effort full-page diagnostic capture;
// a capture failure is logged but never masks the original cause.
func (e *Executor) Run(run *RunContext, steps []Step) RunResult {
	for i, s := range steps {
		e.l.InfoContext(run, fmt.Sprintf("Executing step %d/%d: %s", i+1, len(steps), s.Name))

		if err := e.executeStep(run, s); err != nil {
			re := e.classify(err, s.Name)
			e.l.ErrorContext(run, fmt.Sprintf("Step failed: %s", s.Name),
				"kind", string(re.Kind),
				"error", re.Message)

			result := RunResult{
				RunID:  run.ID,
				Status: StatusFailed,
				Step:   s.Name,
				Cause:  re,
			}
			if re.Kind != ErrorKindPrecondition {
				result.Screenshot = e.capture(run, s.Name)
			}
			return result
		}

		e.l.InfoContext(run, fmt.Sprintf("Step succeeded: %s", s.Name))
	}

	return RunResult{RunID: run.ID, Status: StatusSucceeded}
}

func (e *Executor) executeStep(run *RunContext, s Step) error {
	ctx, cancel := context.WithTimeout(run, s.Timeout)
	defer cancel()

	if err := e.performAction(ctx, run, s); err != nil {
		return err
	}

	if s.Post == nil {
		return nil
	}
	return e.awaitPostCondition(run, s)
}

func (e *Executor) performAction(ctx context.Context, run *RunContext, s Step) error {
	switch s.Action.Kind {
	case ActionNavigate:
		// Navigation acts on the page directly, no resolver call.
		if err := run.Page.Navigate(ctx, s.Action.URL, s.Action.Until); err != nil {
			return &RunError{
				Kind:    ErrorKindActionFailed,
				Message: fmt.Sprintf("navigation to %s failed: %v", s.Action.URL, err),
				Cause:   err,
			}
		}
		return nil

	case ActionFill:
		el, err := e.resolver.Resolve(ctx, run.Page, s.Locator, s.Timeout)
		if err != nil {
			return err
		}
		if err := el.Fill(ctx, s.Action.Value(run)); err != nil {
			return &RunError{
				Kind:    ErrorKindActionFailed,
				Message: fmt.Sprintf("fill failed: %v", err),
				Cause:   err,
			}
		}
		return nil

	case ActionClick:
		el, err := e.resolver.Resolve(ctx, run.Page, s.Locator, s.Timeout)
		if err != nil {
			return err
		}
		if err := el.Click(ctx); err != nil {
			return &RunError{
				Kind:    ErrorKindActionFailed,
				Message: fmt.Sprintf("click failed: %v", err),
				Cause:   err,
			}
		}
		return nil

	case ActionUpload:
		return e.performUpload(ctx, run, s)

	default:
		return &RunError{
			Kind:    ErrorKindActionFailed,
			Message: fmt.Sprintf("unsupported action kind: %s", s.Action.Kind),
		}
	}
}

// performUpload resolves the upload trigger, registers the file-chooser
// expectation, then dispatches the triggering click so the prompt raised as
// its side effect is captured deterministically.
func (e *Executor) performUpload(ctx context.Context, run *RunContext, s Step) error {
	el, err := e.resolver.Resolve(ctx, run.Page, s.Locator, s.Timeout)
	if err != nil {
		return err
	}

	path, err := run.Resume.Resolve()
	if err != nil {
		return &RunError{
			Kind:    ErrorKindPrecondition,
			Message: fmt.Sprintf("no eligible upload file: %v", err),
			Cause:   err,
		}
	}
	if _, err := os.Stat(path); err != nil {
		return &RunError{
			Kind:    ErrorKindPrecondition,
			Message: fmt.Sprintf("upload file not accessible: %v", err),
			Cause:   err,
		}
	}

	chooser, err := run.Page.ExpectFileChooser(ctx, func() error {
		return el.Click(ctx)
	})
	if err != nil {
		if ctx.Err() != nil {
			return &RunError{
				Kind:    ErrorKindPostconditionTimeout,
				Message: fmt.Sprintf("file chooser did not appear within %s", s.Timeout),
				Cause:   err,
			}
		}
		return &RunError{
			Kind:    ErrorKindActionFailed,
			Message: fmt.Sprintf("file chooser capture failed: %v", err),
			Cause:   err,
		}
	}

	if err := chooser.SetFile(ctx, path); err != nil {
		return &RunError{
			Kind:    ErrorKindActionFailed,
			Message: fmt.Sprintf("setting upload file failed: %v", err),
			Cause:   err,
		}
	}

	e.l.InfoContext(run, fmt.Sprintf("Upload file attached: %s", filepath.Base(path)))
	return nil
}

func (e *Executor) awaitPostCondition(run *RunContext, s Step) error {
	post := s.Post
	timeout := post.Timeout
	if timeout == 0 {
		timeout = s.Timeout
	}

	ctx, cancel := context.WithTimeout(run, timeout)
	defer cancel()

	switch post.Kind {
	case PostURLMatches:
		return e.awaitURL(ctx, run, post, timeout)

	case PostElementVisible:
		if _, err := e.resolver.Resolve(ctx, run.Page, post.Locator, timeout); err != nil {
			return &RunError{
				Kind:    ErrorKindPostconditionTimeout,
				Message: fmt.Sprintf("expected element did not become visible within %s", timeout),
				Cause:   err,
			}
		}
		return nil

	case PostTextsPresent:
		return e.awaitTexts(ctx, run, post, timeout)

	default:
		return &RunError{
			Kind:    ErrorKindActionFailed,
			Message: fmt.Sprintf("unsupported postcondition kind: %s", post.Kind),
		}
	}
}

func (e *Executor) awaitURL(ctx context.Context, run *RunContext, post *PostCondition, timeout time.Duration) error {
	for {
		current, err := run.Page.URL(ctx)
		if err == nil && post.Pattern.MatchString(current) {
			return nil
		}

		select {
		case <-ctx.Done():
			return &RunError{
				Kind:    ErrorKindPostconditionTimeout,
				Message: fmt.Sprintf("address did not match %q within %s (last: %s)", post.Pattern, timeout, current),
			}
		case <-time.After(postPollInterval):
		}
	}
}

// awaitTexts resolves the notification element and asserts every required
// fragment is present in its rendered content. The conjunction is what keeps
// structurally-identical notifications apart: only the one carrying this
// step's specific message text satisfies it.
func (e *Executor) awaitTexts(ctx context.Context, run *RunContext, post *PostCondition, timeout time.Duration) error {
	for {
		if e.textsPresent(ctx, run, post) {
			return nil
		}

		select {
		case <-ctx.Done():
			return &RunError{
				Kind:    ErrorKindPostconditionTimeout,
				Message: fmt.Sprintf("notification with required texts %q did not appear within %s", post.Texts, timeout),
			}
		case <-time.After(postPollInterval):
		}
	}
}

func (e *Executor) textsPresent(ctx context.Context, run *RunContext, post *PostCondition) bool {
	// Query one chain pass directly: the surrounding loop already owns the
	// postcondition deadline, so element lookup must not block on its own.
	var el Element
	for _, strategy := range post.Locator {
		candidate, err := e.resolver.tryStrategy(ctx, run.Page, strategy)
		if err != nil || candidate == nil {
			continue
		}
		el = candidate
		break
	}
	if el == nil {
		return false
	}

	content, err := el.Text(ctx)
	if err != nil {
		return false
	}
	for _, fragment := range post.Texts {
		if !strings.Contains(content, fragment) {
			return false
		}
	}
	return true
}

// classify normalizes any step error into a step-tagged RunError.
func (e *Executor) classify(err error, step string) *RunError {
	var re *RunError
	if errors.As(err, &re) {
		re.Step = step
		return re
	}
	if errors.Is(err, ErrNoMatch) {
		return &RunError{
			Kind:    ErrorKindElementNotFound,
			Step:    step,
			Message: err.Error(),
			Cause:   err,
		}
	}
	return &RunError{
		Kind:    ErrorKindActionFailed,
		Step:    step,
		Message: err.Error(),
		Cause:   err,
	}
}

// capture performs the best-effort diagnostic snapshot. The capture context
// is detached from the failed step's expired deadline.
func (e *Executor) capture(run *RunContext, step string) string {
	if e.screenshotDir == "" {
		return ""
	}

	path := filepath.Join(e.screenshotDir, fmt.Sprintf("failure-%s-%s.png", run.ID, step))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := run.Page.Screenshot(ctx, path); err != nil {
		e.l.ErrorContext(run, "Diagnostic capture failed",
			"step", step,
			"path", path,
			"error", err)
		return ""
	}

	e.l.InfoContext(run, "Diagnostic snapshot saved", "path", path)
	return path
}
