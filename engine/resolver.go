package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNoMatch is returned when every strategy in a locator chain yielded zero
// visible matches within the resolution budget.
var ErrNoMatch = errors.New("no visible element matched any strategy")

const defaultPollInterval = 250 * time.Millisecond

// Resolver turns a locator chain into at most one usable, visible element.
// Target markup varies between releases of the application; trying the
// configured alternatives in order tolerates minor UI drift without
// branching the workflow.
type Resolver struct {
	l *slog.Logger

	// PollInterval is the pause between passes over the strategy chain.
	PollInterval time.Duration
}

func NewResolver(l *slog.Logger) *Resolver {
	return &Resolver{
		l:            l,
		PollInterval: defaultPollInterval,
	}
}

// Resolve tries the chain's strategies in declared order until one yields a
// visible element or the budget elapses. The timeout is shared across all
// strategies of this one resolution, never reset per strategy. A strategy
// whose query errors counts as "no match" and resolution moves on.
func (r *Resolver) Resolve(ctx context.Context, page Page, spec LocatorSpec, timeout time.Duration) (Element, error) {
	if len(spec) == 0 {
		return nil, errors.New("locator spec must contain at least one strategy")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		for _, strategy := range spec {
			el, err := r.tryStrategy(ctx, page, strategy)
			if err != nil {
				// Budget exhausted mid-query; report NotFound rather
				// than surfacing the query error.
				if ctx.Err() != nil {
					return nil, fmt.Errorf("%w (budget %s)", ErrNoMatch, timeout)
				}
				r.l.DebugContext(ctx, "Locator strategy failed, trying next",
					"strategy", strategy.describe(),
					"error", err)
				continue
			}
			if el != nil {
				return el, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w (budget %s)", ErrNoMatch, timeout)
		case <-time.After(r.PollInterval):
		}
	}
}

// tryStrategy runs one strategy once. It returns (nil, nil) when the query
// succeeded but produced no visible element.
func (r *Resolver) tryStrategy(ctx context.Context, page Page, s Strategy) (Element, error) {
	matches, err := page.Query(ctx, s)
	if err != nil {
		return nil, err
	}

	if s.First && len(matches) > 1 {
		matches = matches[:1]
	}

	for _, m := range matches {
		visible, err := m.Visible(ctx)
		if err != nil {
			return nil, err
		}
		if visible {
			return m, nil
		}
	}
	return nil, nil
}
