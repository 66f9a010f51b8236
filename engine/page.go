package engine

import "context"

// Quiescence names the load condition a navigation blocks on.
// Levels are configured per navigation step, not uniform across the run.
type Quiescence string

const (
	// QuiescenceLoad waits for the load event.
	QuiescenceLoad Quiescence = "load"
	// QuiescenceDOMContentLoaded waits for the document to be parsed.
	QuiescenceDOMContentLoaded Quiescence = "domcontentloaded"
	// QuiescenceNetworkIdle waits for network traffic to settle.
	QuiescenceNetworkIdle Quiescence = "networkidle"
)

// Page is the engine's view of the browser automation layer. The engine
// owns sequencing, timeouts, and failure classification; implementations own
// the actual browser. Every method honours ctx cancellation and deadlines.
type Page interface {
	// Navigate loads url and blocks until the page reports the given
	// quiescence level.
	Navigate(ctx context.Context, url string, until Quiescence) error

	// URL reports the page's current address.
	URL(ctx context.Context) (string, error)

	// Query runs a single locator strategy and returns all raw matches.
	// A failing query (malformed selector, detached frame) returns an
	// error; the resolver treats that as "no match", not as fatal.
	Query(ctx context.Context, s Strategy) ([]Element, error)

	// ExpectFileChooser registers interest in a pending file-selection
	// prompt, invokes trigger, and returns the chooser raised as a side
	// effect of it. The subscription is registered before trigger runs so
	// the prompt is captured deterministically.
	ExpectFileChooser(ctx context.Context, trigger func() error) (FileChooser, error)

	// Screenshot writes a full-page snapshot to path.
	Screenshot(ctx context.Context, path string) error
}

// Element is a resolved, usable handle on one page element.
type Element interface {
	Visible(ctx context.Context) (bool, error)
	Click(ctx context.Context) error
	Fill(ctx context.Context, value string) error
	Text(ctx context.Context) (string, error)
}

// FileChooser is a captured native file-selection prompt.
type FileChooser interface {
	SetFile(ctx context.Context, path string) error
}

// FileSource resolves the upload file path at its point of use. Resolution
// is deliberately lazy: earlier steps run even when no qualifying file
// exists, and the upload step surfaces the precondition failure.
type FileSource interface {
	Resolve() (string, error)
}
