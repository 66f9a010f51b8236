// Package preflight verifies the target is reachable before a browser is
// launched, so an outage surfaces as a cheap precondition failure instead of
// a navigation timeout mid-run.
package preflight

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/toanujgoel/Naukri-Profile-Refresh/engine"
)

// Check probes url with a bounded GET. Transport failures and server errors
// are precondition failures; any response below 500 counts as reachable
// (the login page may answer redirects or bot-wall status codes and still
// serve the workflow).
func Check(ctx context.Context, url string, timeout time.Duration) *engine.RunError {
	client := resty.New().SetTimeout(timeout)

	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return engine.Preconditionf(err, "target unreachable: %s", url)
	}
	if resp.StatusCode() >= 500 {
		return engine.Preconditionf(nil,
			"target unhealthy: %s answered %s", url, resp.Status())
	}
	return nil
}
