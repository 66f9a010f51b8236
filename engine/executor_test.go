package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

type fakeFileSource struct {
	path string
	err  error
}

func (f fakeFileSource) Resolve() (string, error) {
	return f.path, f.err
}

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	return NewExecutor(testLogger(), testResolver(), t.TempDir())
}

func newTestRun(page Page, source FileSource) *RunContext {
	return NewRunContext(context.Background(), page, Credentials{
		Email:    "user@example.com",
		Password: "secret",
	}, source)
}

func writeTempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("resume"), 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}

// TestRun_FullScenarioSucceeds drives the complete login / edit / save /
// upload shape against a fully cooperative fake target. Later targets only
// become actionable as side effects of earlier steps, so passing also
// proves declaration order.
func TestRun_FullScenarioSucceeds(t *testing.T) {
	page := newFakePage()
	page.navTo["https://target/login"] = "https://target/login"

	email := &fakeElement{visible: true}
	password := &fakeElement{visible: true}
	submit := &fakeElement{visible: true, onClick: func() { page.setURL("https://target/homepage") }}
	save := &fakeElement{visible: false}
	notification := &fakeElement{visible: true}
	edit := &fakeElement{visible: true, onClick: func() {
		save.mu.Lock()
		save.visible = true
		save.mu.Unlock()
	}}
	save.onClick = func() { notification.setText("Success Resume Headline has been successfully saved.") }
	upload := &fakeElement{visible: true}

	page.addElement("#email", email)
	page.addElement("#password", password)
	page.addElement("#submit", submit)
	page.addElement("#edit", edit)
	page.addElement("#save", save)
	page.addElement("#notification", notification)
	page.addElement("#upload", upload)
	page.chooser = &fakeFileChooser{onSet: func() {
		notification.setText("Success Resume has been successfully uploaded.")
	}}

	resumePath := writeTempFile(t, "resume.pdf")

	steps := []Step{
		{
			Name:    "open-login",
			Action:  Action{Kind: ActionNavigate, URL: "https://target/login", Until: QuiescenceNetworkIdle},
			Timeout: time.Second,
		},
		{
			Name:    "enter-email",
			Action:  Action{Kind: ActionFill, Value: func(r *RunContext) string { return r.Creds.Email }},
			Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#email"}},
			Timeout: time.Second,
		},
		{
			Name:    "enter-password",
			Action:  Action{Kind: ActionFill, Value: func(r *RunContext) string { return r.Creds.Password }},
			Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#password"}},
			Timeout: time.Second,
		},
		{
			Name:    "submit-login",
			Action:  Action{Kind: ActionClick},
			Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#submit"}},
			Post: &PostCondition{
				Kind:    PostURLMatches,
				Pattern: regexp.MustCompile(`homepage`),
				Timeout: time.Second,
			},
			Timeout: time.Second,
		},
		{
			Name:    "edit-headline",
			Action:  Action{Kind: ActionClick},
			Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#edit"}},
			Post: &PostCondition{
				Kind:    PostElementVisible,
				Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#save"}},
				Timeout: time.Second,
			},
			Timeout: time.Second,
		},
		{
			Name:    "save-headline",
			Action:  Action{Kind: ActionClick},
			Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#save"}},
			Post: &PostCondition{
				Kind:    PostTextsPresent,
				Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#notification"}},
				Texts:   []string{"Success", "Resume Headline has been successfully saved."},
				Timeout: time.Second,
			},
			Timeout: time.Second,
		},
		{
			Name:    "upload-resume",
			Action:  Action{Kind: ActionUpload},
			Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#upload"}},
			Post: &PostCondition{
				Kind:    PostTextsPresent,
				Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#notification"}},
				Texts:   []string{"Resume has been successfully uploaded."},
				Timeout: time.Second,
			},
			Timeout: time.Second,
		},
	}

	run := newTestRun(page, fakeFileSource{path: resumePath})
	result := newTestExecutor(t).Run(run, steps)

	if !result.Succeeded() {
		t.Fatalf("Expected success, got failure at %q: %v", result.Step, result.Cause)
	}
	if len(email.filled) != 1 || email.filled[0] != "user@example.com" {
		t.Errorf("Email field filled %v, expected exactly one fill with the credential", email.filled)
	}
	if len(password.filled) != 1 || password.filled[0] != "secret" {
		t.Errorf("Password field filled %v", password.filled)
	}
	for name, el := range map[string]*fakeElement{"submit": submit, "edit": edit, "save": save, "upload": upload} {
		if el.clicks != 1 {
			t.Errorf("Element %s clicked %d times, expected exactly once", name, el.clicks)
		}
	}
	if len(page.chooser.files) != 1 || page.chooser.files[0] != resumePath {
		t.Errorf("Chooser received files %v, expected %s", page.chooser.files, resumePath)
	}
	if len(page.screenshots) != 0 {
		t.Errorf("No diagnostic capture expected on success, got %v", page.screenshots)
	}
}

func TestRun_ResolutionFailureFailsFast(t *testing.T) {
	page := newFakePage()
	first := &fakeElement{visible: true}
	third := &fakeElement{visible: true}
	page.addElement("#first", first)
	page.addElement("#third", third)

	steps := []Step{
		{
			Name:    "step-one",
			Action:  Action{Kind: ActionClick},
			Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#first"}},
			Timeout: time.Second,
		},
		{
			Name:    "step-two",
			Action:  Action{Kind: ActionClick},
			Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#missing"}},
			Timeout: 50 * time.Millisecond,
		},
		{
			Name:    "step-three",
			Action:  Action{Kind: ActionClick},
			Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#third"}},
			Timeout: time.Second,
		},
	}

	run := newTestRun(page, fakeFileSource{})
	result := newTestExecutor(t).Run(run, steps)

	if result.Succeeded() {
		t.Fatal("Expected failure")
	}
	if result.Step != "step-two" {
		t.Errorf("Failure should name the failing step, got %q", result.Step)
	}
	if result.Cause.Kind != ErrorKindElementNotFound {
		t.Errorf("Expected element_not_found, got %s", result.Cause.Kind)
	}
	if first.clicks != 1 {
		t.Errorf("Steps before the failure must have executed exactly once, got %d", first.clicks)
	}
	if third.clicks != 0 {
		t.Errorf("No step after the failure may execute, got %d clicks", third.clicks)
	}
	if len(page.screenshots) != 1 {
		t.Errorf("Expected one diagnostic capture, got %v", page.screenshots)
	}
	if result.Screenshot == "" {
		t.Error("Result should carry the diagnostic snapshot path")
	}
}

func TestRun_PostconditionTimeout(t *testing.T) {
	page := newFakePage()
	page.setURL("https://target/login")
	button := &fakeElement{visible: true}
	page.addElement("#submit", button)

	steps := []Step{{
		Name:    "submit-login",
		Action:  Action{Kind: ActionClick},
		Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#submit"}},
		Post: &PostCondition{
			Kind:    PostURLMatches,
			Pattern: regexp.MustCompile(`homepage`),
			Timeout: 50 * time.Millisecond,
		},
		Timeout: time.Second,
	}}

	run := newTestRun(page, fakeFileSource{})
	result := newTestExecutor(t).Run(run, steps)

	if result.Succeeded() {
		t.Fatal("Expected failure")
	}
	if result.Cause.Kind != ErrorKindPostconditionTimeout {
		t.Errorf("Expected postcondition_timeout, got %s", result.Cause.Kind)
	}
	if button.clicks != 1 {
		t.Errorf("The action itself should have run, got %d clicks", button.clicks)
	}
}

func TestRun_TextsPresentIsConjunction(t *testing.T) {
	cases := []struct {
		name    string
		texts   []string
		succeed bool
	}{
		{"subset present", []string{"Success"}, true},
		{"all present", []string{"Success", "Resume Headline has been successfully saved."}, true},
		{"partial match fails", []string{"Success", "unrelated text"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := newFakePage()
			button := &fakeElement{visible: true}
			page.addElement("#save", button)
			page.addElement("#notification", &fakeElement{
				visible: true,
				text:    "Success Resume Headline has been successfully saved.",
			})

			steps := []Step{{
				Name:    "save-headline",
				Action:  Action{Kind: ActionClick},
				Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#save"}},
				Post: &PostCondition{
					Kind:    PostTextsPresent,
					Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#notification"}},
					Texts:   tc.texts,
					Timeout: 50 * time.Millisecond,
				},
				Timeout: time.Second,
			}}

			run := newTestRun(page, fakeFileSource{})
			result := newTestExecutor(t).Run(run, steps)

			if result.Succeeded() != tc.succeed {
				t.Fatalf("Expected succeed=%v, got result %+v", tc.succeed, result)
			}
			if !tc.succeed && result.Cause.Kind != ErrorKindPostconditionTimeout {
				t.Errorf("Expected postcondition_timeout, got %s", result.Cause.Kind)
			}
		})
	}
}

func uploadStep(timeout time.Duration) Step {
	return Step{
		Name:    "upload-resume",
		Action:  Action{Kind: ActionUpload},
		Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#upload"}},
		Timeout: timeout,
	}
}

func TestRun_UploadMissingFileIsPrecondition(t *testing.T) {
	page := newFakePage()
	page.addElement("#upload", &fakeElement{visible: true})
	page.chooser = &fakeFileChooser{}

	run := newTestRun(page, fakeFileSource{path: "/nonexistent/resume.pdf"})
	result := newTestExecutor(t).Run(run, []Step{uploadStep(time.Second)})

	if result.Succeeded() {
		t.Fatal("Expected failure")
	}
	if result.Cause.Kind != ErrorKindPrecondition {
		t.Errorf("Expected precondition, got %s", result.Cause.Kind)
	}
	if len(page.screenshots) != 0 {
		t.Errorf("Precondition failures must not attempt diagnostic capture, got %v", page.screenshots)
	}
}

func TestRun_UploadNoEligibleFileIsPrecondition(t *testing.T) {
	page := newFakePage()
	page.addElement("#upload", &fakeElement{visible: true})
	page.chooser = &fakeFileChooser{}

	source := fakeFileSource{err: errors.New("no file with extension [.pdf] in resume")}
	run := newTestRun(page, source)
	result := newTestExecutor(t).Run(run, []Step{uploadStep(time.Second)})

	if result.Succeeded() || result.Cause.Kind != ErrorKindPrecondition {
		t.Fatalf("Expected precondition failure, got %+v", result)
	}
}

func TestRun_UploadChooserNeverAppears(t *testing.T) {
	page := newFakePage()
	trigger := &fakeElement{visible: true}
	page.addElement("#upload", trigger)
	// page.chooser left nil: the prompt never shows up.

	run := newTestRun(page, fakeFileSource{path: writeTempFile(t, "resume.pdf")})
	result := newTestExecutor(t).Run(run, []Step{uploadStep(100 * time.Millisecond)})

	if result.Succeeded() {
		t.Fatal("Expected failure")
	}
	if result.Cause.Kind != ErrorKindPostconditionTimeout {
		t.Errorf("Missing chooser is postcondition-timeout-equivalent, got %s", result.Cause.Kind)
	}
	if trigger.clicks != 1 {
		t.Errorf("The triggering click should have been dispatched, got %d", trigger.clicks)
	}
}

func TestRun_CaptureFailureDoesNotMaskCause(t *testing.T) {
	page := newFakePage()
	page.screenshotErr = errors.New("disk full")

	steps := []Step{{
		Name:    "edit-headline",
		Action:  Action{Kind: ActionClick},
		Locator: LocatorSpec{{Kind: StrategyCSS, Selector: "#missing"}},
		Timeout: 50 * time.Millisecond,
	}}

	run := newTestRun(page, fakeFileSource{})
	result := newTestExecutor(t).Run(run, steps)

	if result.Succeeded() {
		t.Fatal("Expected failure")
	}
	if result.Cause.Kind != ErrorKindElementNotFound {
		t.Errorf("Capture failure must not replace the original cause, got %s", result.Cause.Kind)
	}
	if result.Screenshot != "" {
		t.Errorf("No snapshot path should be reported when capture failed, got %q", result.Screenshot)
	}
}

func TestRun_NavigationFailure(t *testing.T) {
	page := newFakePage()
	page.navErr = errors.New("dns lookup failed")

	steps := []Step{{
		Name:    "open-login",
		Action:  Action{Kind: ActionNavigate, URL: "https://target/login", Until: QuiescenceNetworkIdle},
		Timeout: time.Second,
	}}

	run := newTestRun(page, fakeFileSource{})
	result := newTestExecutor(t).Run(run, steps)

	if result.Succeeded() {
		t.Fatal("Expected failure")
	}
	if result.Cause.Kind != ErrorKindActionFailed {
		t.Errorf("Expected action_failed, got %s", result.Cause.Kind)
	}
	if result.Step != "open-login" {
		t.Errorf("Failure should name the navigation step, got %q", result.Step)
	}
}
