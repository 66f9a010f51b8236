package engine

import (
	"context"
	"sync"
)

// fakeElement is a scriptable element. onClick runs after a successful
// click so tests can model UI effects (URL change, notification appearing).
type fakeElement struct {
	mu      sync.Mutex
	visible bool
	text    string

	clickErr   error
	fillErr    error
	visibleErr error

	clicks  int
	filled  []string
	onClick func()
}

func (f *fakeElement) Visible(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible, f.visibleErr
}

func (f *fakeElement) Click(ctx context.Context) error {
	f.mu.Lock()
	if f.clickErr != nil {
		defer f.mu.Unlock()
		return f.clickErr
	}
	f.clicks++
	cb := f.onClick
	f.mu.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}

func (f *fakeElement) Fill(ctx context.Context, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fillErr != nil {
		return f.fillErr
	}
	f.filled = append(f.filled, value)
	return nil
}

func (f *fakeElement) Text(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, nil
}

func (f *fakeElement) setText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
}

type fakeFileChooser struct {
	files  []string
	setErr error
	onSet  func()
}

func (f *fakeFileChooser) SetFile(ctx context.Context, path string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.files = append(f.files, path)
	if f.onSet != nil {
		f.onSet()
	}
	return nil
}

// fakePage scripts the automation layer. Elements are keyed by the strategy
// they answer to; queried records every strategy evaluation in order.
type fakePage struct {
	mu sync.Mutex

	url      string
	elements map[string][]*fakeElement
	queryErr map[string]error
	queried  []string

	navigated []string
	navErr    error
	// navTo remaps a navigation target to the address the page reports
	// afterwards, for redirect-style behavior.
	navTo map[string]string

	chooser    *fakeFileChooser
	chooserErr error

	screenshots   []string
	screenshotErr error
}

func newFakePage() *fakePage {
	return &fakePage{
		elements: make(map[string][]*fakeElement),
		queryErr: make(map[string]error),
		navTo:    make(map[string]string),
	}
}

// strategyKey matches how tests register elements against strategies.
func strategyKey(s Strategy) string {
	switch s.Kind {
	case StrategyCSS:
		return s.Selector
	case StrategyRole:
		return s.Role + "/" + s.Name
	default:
		return s.Text
	}
}

func (p *fakePage) addElement(key string, el *fakeElement) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[key] = append(p.elements[key], el)
}

func (p *fakePage) setURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

func (p *fakePage) Navigate(ctx context.Context, url string, until Quiescence) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.navErr != nil {
		return p.navErr
	}
	p.navigated = append(p.navigated, url)
	if to, ok := p.navTo[url]; ok {
		p.url = to
	} else {
		p.url = url
	}
	return nil
}

func (p *fakePage) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

func (p *fakePage) Query(ctx context.Context, s Strategy) ([]Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := strategyKey(s)
	p.queried = append(p.queried, key)

	if err, ok := p.queryErr[key]; ok {
		return nil, err
	}

	matches := p.elements[key]
	elements := make([]Element, len(matches))
	for i, m := range matches {
		elements[i] = m
	}
	return elements, nil
}

func (p *fakePage) ExpectFileChooser(ctx context.Context, trigger func() error) (FileChooser, error) {
	if err := trigger(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	chooser, chooserErr := p.chooser, p.chooserErr
	p.mu.Unlock()

	if chooserErr != nil {
		return nil, chooserErr
	}
	if chooser == nil {
		// No prompt is ever raised; block until the step budget expires.
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return chooser, nil
}

func (p *fakePage) Screenshot(ctx context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.screenshotErr != nil {
		return p.screenshotErr
	}
	p.screenshots = append(p.screenshots, path)
	return nil
}

// queryCount reports how many times a strategy key was evaluated.
func (p *fakePage) queryCount(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, q := range p.queried {
		if q == key {
			n++
		}
	}
	return n
}
