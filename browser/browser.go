// Package browser implements the engine's page abstraction on top of
// Playwright-driven Chromium. The engine never imports this package; it sees
// only the engine.Page contract.
package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Browser owns the Playwright driver and the launched Chromium process.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// Launch starts the driver and a Chromium instance. The caller must Close
// the returned Browser when the run ends, success or failure.
func Launch(headless bool) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	chromium, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Browser{pw: pw, browser: chromium}, nil
}

// NewPage opens a fresh page owned by exactly one run.
func (b *Browser) NewPage() (*Page, error) {
	page, err := b.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &Page{page: page}, nil
}

func (b *Browser) Close() error {
	if err := b.browser.Close(); err != nil {
		_ = b.pw.Stop()
		return fmt.Errorf("failed to close browser: %w", err)
	}
	if err := b.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}
