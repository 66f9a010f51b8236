package engine

import (
	"regexp"
	"time"
)

// ActionKind identifies what a step does once its target is resolved.
type ActionKind string

const (
	ActionNavigate ActionKind = "navigate"
	ActionFill     ActionKind = "fill"
	ActionClick    ActionKind = "click"
	ActionUpload   ActionKind = "upload"
)

// Action describes the single operation a step performs.
// Navigate acts on the page directly and needs no locator; the other kinds
// act on the element resolved from the step's locator chain.
type Action struct {
	Kind ActionKind

	// Navigate.
	URL   string
	Until Quiescence

	// Fill. The value is read from the run context at execution time so
	// step definitions stay process-wide constants while credentials stay
	// per-run.
	Value func(*RunContext) string
}

// PostKind identifies the observable effect a step waits for after its action.
type PostKind string

const (
	PostURLMatches     PostKind = "url_matches"
	PostElementVisible PostKind = "element_visible"
	PostTextsPresent   PostKind = "texts_present"
)

// PostCondition is the observable fact that confirms a step's effect.
// Texts is a conjunction: every fragment must be present in the resolved
// element's rendered content, partial matches fail.
type PostCondition struct {
	Kind    PostKind
	Pattern *regexp.Regexp
	Locator LocatorSpec
	Texts   []string

	// Timeout bounds the wait for this postcondition. Zero means the
	// owning step's timeout applies.
	Timeout time.Duration
}

// Step is one atomic locate-act-verify unit of the workflow.
// Steps execute in declaration order, exactly once each, never in parallel.
type Step struct {
	Name    string
	Action  Action
	Locator LocatorSpec
	Post    *PostCondition
	Timeout time.Duration
}

// StrategyKind identifies how a single locator strategy queries the page.
type StrategyKind string

const (
	// StrategyCSS matches by structural selector.
	StrategyCSS StrategyKind = "css"
	// StrategyRole matches by ARIA role plus accessible name.
	StrategyRole StrategyKind = "role"
	// StrategyText matches by rendered text containment.
	StrategyText StrategyKind = "text"
)

// Strategy is one concrete way to locate a logical UI target.
type Strategy struct {
	Kind     StrategyKind
	Selector string
	Role     string
	Name     string
	Text     string

	// First scopes the query to its first raw match before the visibility
	// filter runs, for selectors that legitimately match several nodes.
	First bool
}

// LocatorSpec is an ordered, non-empty chain of alternative strategies for
// one logical target. Strategies are tried in order; the first one yielding
// a visible match wins and later strategies are never consulted.
type LocatorSpec []Strategy

func (s Strategy) describe() string {
	switch s.Kind {
	case StrategyCSS:
		return "css=" + s.Selector
	case StrategyRole:
		return "role=" + s.Role + "[name=" + s.Name + "]"
	case StrategyText:
		return "text=" + s.Text
	default:
		return string(s.Kind)
	}
}
