// Package naukri defines the profile-refresh workflow run against
// naukri.com: sign in, open the profile, re-save the resume headline, then
// upload the resume file. The step sequence and its locator chains are
// process-wide constants shared read-only by every run.
package naukri

import (
	"regexp"
	"time"

	"github.com/toanujgoel/Naukri-Profile-Refresh/engine"
)

// Success-notification texts. The two confirmations are structurally
// identical on the page; each step requires its own message text so an
// earlier success can never be mistaken for a later one.
const (
	statusWord        = "Success"
	headlineSavedMsg  = "Resume Headline has been successfully saved."
	resumeUploadedMsg = "Resume has been successfully uploaded."
)

var (
	homepagePattern = regexp.MustCompile(`mnjuser/homepage`)
	profilePattern  = regexp.MustCompile(`mnjuser/profile`)
)

// Target holds the addresses the workflow navigates to.
type Target struct {
	LoginURL   string
	ProfileURL string
}

// Timeouts bound each step's resolution budget and postcondition wait.
type Timeouts struct {
	Navigation    time.Duration
	Step          time.Duration
	Postcondition time.Duration
}

// Locator chains. Naukri markup drifts between releases; each logical
// target carries the structural selector observed today plus one or two
// fallbacks keyed to more stable traits.
var (
	emailField = engine.LocatorSpec{
		{Kind: engine.StrategyCSS, Selector: "#usernameField"},
		{Kind: engine.StrategyCSS, Selector: `input[placeholder*="Email ID"]`, First: true},
		{Kind: engine.StrategyRole, Role: "textbox", Name: "Email ID / Username"},
	}

	passwordField = engine.LocatorSpec{
		{Kind: engine.StrategyCSS, Selector: "#passwordField"},
		{Kind: engine.StrategyCSS, Selector: `input[type="password"]`, First: true},
	}

	loginButton = engine.LocatorSpec{
		{Kind: engine.StrategyCSS, Selector: `button[type="submit"]`, First: true},
		{Kind: engine.StrategyRole, Role: "button", Name: "Login"},
		{Kind: engine.StrategyText, Text: "Login"},
	}

	headlineEdit = engine.LocatorSpec{
		{Kind: engine.StrategyCSS, Selector: ".lazyResumeHead span.edit.icon"},
		{Kind: engine.StrategyCSS, Selector: ".widgetHead .edit.icon", First: true},
		{Kind: engine.StrategyRole, Role: "button", Name: "editOneTheme"},
	}

	headlineSave = engine.LocatorSpec{
		{Kind: engine.StrategyCSS, Selector: "#saveBasicDetailsBtn"},
		{Kind: engine.StrategyRole, Role: "button", Name: "Save"},
		{Kind: engine.StrategyCSS, Selector: `form[name="resumeHeadlineForm"] button[type="submit"]`, First: true},
	}

	notification = engine.LocatorSpec{
		{Kind: engine.StrategyCSS, Selector: ".msgBox.success"},
		{Kind: engine.StrategyCSS, Selector: ".success-msg", First: true},
		{Kind: engine.StrategyText, Text: statusWord},
	}

	uploadTrigger = engine.LocatorSpec{
		{Kind: engine.StrategyCSS, Selector: "#lazyAttachCV .uploadBtn"},
		{Kind: engine.StrategyRole, Role: "button", Name: "Update resume"},
		{Kind: engine.StrategyText, Text: "Update resume"},
	}
)

// Steps builds the ordered refresh sequence. Steps execute in this order,
// exactly once each; the first failure aborts the rest of the run.
func Steps(target Target, t Timeouts) []engine.Step {
	return []engine.Step{
		{
			Name: "open-login",
			Action: engine.Action{
				Kind: engine.ActionNavigate,
				URL:  target.LoginURL,
				// The login page keeps loading widgets after the DOM is
				// parsed; wait for the network to settle before filling.
				Until: engine.QuiescenceNetworkIdle,
			},
			Timeout: t.Navigation,
		},
		{
			Name:    "enter-email",
			Action:  engine.Action{Kind: engine.ActionFill, Value: emailValue},
			Locator: emailField,
			Timeout: t.Step,
		},
		{
			Name:    "enter-password",
			Action:  engine.Action{Kind: engine.ActionFill, Value: passwordValue},
			Locator: passwordField,
			Timeout: t.Step,
		},
		{
			Name:    "submit-login",
			Action:  engine.Action{Kind: engine.ActionClick},
			Locator: loginButton,
			Post: &engine.PostCondition{
				Kind:    engine.PostURLMatches,
				Pattern: homepagePattern,
				Timeout: t.Navigation,
			},
			Timeout: t.Step,
		},
		{
			Name: "open-profile",
			Action: engine.Action{
				Kind:  engine.ActionNavigate,
				URL:   target.ProfileURL,
				Until: engine.QuiescenceDOMContentLoaded,
			},
			Post: &engine.PostCondition{
				Kind:    engine.PostURLMatches,
				Pattern: profilePattern,
				Timeout: t.Postcondition,
			},
			Timeout: t.Navigation,
		},
		{
			Name:    "edit-headline",
			Action:  engine.Action{Kind: engine.ActionClick},
			Locator: headlineEdit,
			Post: &engine.PostCondition{
				Kind:    engine.PostElementVisible,
				Locator: headlineSave,
				Timeout: t.Postcondition,
			},
			Timeout: t.Step,
		},
		{
			Name:    "save-headline",
			Action:  engine.Action{Kind: engine.ActionClick},
			Locator: headlineSave,
			Post: &engine.PostCondition{
				Kind:    engine.PostTextsPresent,
				Locator: notification,
				Texts:   []string{statusWord, headlineSavedMsg},
				Timeout: t.Postcondition,
			},
			Timeout: t.Step,
		},
		{
			Name:    "upload-resume",
			Action:  engine.Action{Kind: engine.ActionUpload},
			Locator: uploadTrigger,
			Post: &engine.PostCondition{
				Kind:    engine.PostTextsPresent,
				Locator: notification,
				Texts:   []string{resumeUploadedMsg},
				Timeout: t.Postcondition,
			},
			Timeout: t.Step,
		},
	}
}

func emailValue(run *engine.RunContext) string {
	return run.Creds.Email
}

func passwordValue(run *engine.RunContext) string {
	return run.Creds.Password
}
