package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/toanujgoel/Naukri-Profile-Refresh/engine"
)

var _ engine.Page = &Page{}

// Page adapts one Playwright page to the engine contract. Deadlines arrive
// through ctx and are translated into Playwright's millisecond timeouts so
// no wait outlives the step that issued it.
type Page struct {
	page playwright.Page
}

func (p *Page) Navigate(ctx context.Context, url string, until engine.Quiescence) error {
	opts := playwright.PageGotoOptions{
		WaitUntil: waitUntil(until),
	}
	if ms, ok := remainingMillis(ctx); ok {
		opts.Timeout = playwright.Float(ms)
	}
	if _, err := p.page.Goto(url, opts); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.URL(), nil
}

func (p *Page) Query(ctx context.Context, s engine.Strategy) ([]engine.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	locator, err := p.locate(s)
	if err != nil {
		return nil, err
	}

	all, err := locator.All()
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", s.Selector, err)
	}

	elements := make([]engine.Element, len(all))
	for i, l := range all {
		elements[i] = &element{loc: l}
	}
	return elements, nil
}

func (p *Page) ExpectFileChooser(ctx context.Context, trigger func() error) (engine.FileChooser, error) {
	opts := playwright.PageExpectFileChooserOptions{}
	if ms, ok := remainingMillis(ctx); ok {
		opts.Timeout = playwright.Float(ms)
	}

	chooser, err := p.page.ExpectFileChooser(trigger, opts)
	if err != nil {
		return nil, fmt.Errorf("file chooser: %w", err)
	}
	return &fileChooser{chooser: chooser}, nil
}

func (p *Page) Screenshot(ctx context.Context, path string) error {
	opts := playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}
	if ms, ok := remainingMillis(ctx); ok {
		opts.Timeout = playwright.Float(ms)
	}
	if _, err := p.page.Screenshot(opts); err != nil {
		return fmt.Errorf("screenshot %s: %w", path, err)
	}
	return nil
}

func (p *Page) Close() error {
	return p.page.Close()
}

// locate maps one strategy to a Playwright locator.
func (p *Page) locate(s engine.Strategy) (playwright.Locator, error) {
	var locator playwright.Locator
	switch s.Kind {
	case engine.StrategyCSS:
		locator = p.page.Locator(s.Selector)
	case engine.StrategyRole:
		locator = p.page.GetByRole(playwright.AriaRole(s.Role), playwright.PageGetByRoleOptions{
			Name: s.Name,
		})
	case engine.StrategyText:
		locator = p.page.GetByText(s.Text)
	default:
		return nil, fmt.Errorf("unsupported strategy kind: %s", s.Kind)
	}

	if s.First {
		locator = locator.First()
	}
	return locator, nil
}

type element struct {
	loc playwright.Locator
}

func (e *element) Visible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.loc.IsVisible()
}

func (e *element) Click(ctx context.Context) error {
	opts := playwright.LocatorClickOptions{}
	if ms, ok := remainingMillis(ctx); ok {
		opts.Timeout = playwright.Float(ms)
	}
	return e.loc.Click(opts)
}

func (e *element) Fill(ctx context.Context, value string) error {
	opts := playwright.LocatorFillOptions{}
	if ms, ok := remainingMillis(ctx); ok {
		opts.Timeout = playwright.Float(ms)
	}
	return e.loc.Fill(value, opts)
}

func (e *element) Text(ctx context.Context) (string, error) {
	opts := playwright.LocatorInnerTextOptions{}
	if ms, ok := remainingMillis(ctx); ok {
		opts.Timeout = playwright.Float(ms)
	}
	return e.loc.InnerText(opts)
}

type fileChooser struct {
	chooser playwright.FileChooser
}

func (f *fileChooser) SetFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.chooser.SetFiles(path)
}

func waitUntil(q engine.Quiescence) *playwright.WaitUntilState {
	switch q {
	case engine.QuiescenceNetworkIdle:
		return playwright.WaitUntilStateNetworkidle
	case engine.QuiescenceDOMContentLoaded:
		return playwright.WaitUntilStateDomcontentloaded
	default:
		return playwright.WaitUntilStateLoad
	}
}

func remainingMillis(ctx context.Context) (float64, bool) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0, false
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 1, true
	}
	return float64(remaining.Milliseconds()), true
}
