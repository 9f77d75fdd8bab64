// Package automation drives the technology-profiling web application.
//
// The campaign core only sees the Page and Opener interfaces; the go-rod
// implementation lives in browser.go and page.go.
package automation

import (
	"context"
	"errors"

	"github.com/use-agent/stackscout/models"
)

var (
	// ErrNoSuggestion means the search box produced no autocomplete entry
	// for the typed domain within the suggestion timeout.
	ErrNoSuggestion = errors.New("automation: no suggestion for domain")

	// ErrStackNotFound means the results region never appeared or was empty.
	ErrStackNotFound = errors.New("automation: technology stack not found")
)

// Page is one logged-in (or logging-in) browser session.
// Implementations own no campaign state.
type Page interface {
	// Login signs in with cred. Any error means the session is unusable.
	Login(ctx context.Context, cred models.Credential) error

	// Logout signs the session out.
	Logout(ctx context.Context) error

	// NavigateHome resets the UI to the search page.
	NavigateHome(ctx context.Context) error

	// SearchDomain types domain into the search box and selects the matching
	// suggestion, waiting for the results to load. It returns ErrNoSuggestion
	// when no suggestion appears in time.
	SearchDomain(ctx context.Context, domain string) error

	// ExtractStack returns the results region as ordered lines, or
	// ErrStackNotFound.
	ExtractStack(ctx context.Context) ([]string, error)

	// Close releases the session's browser resources.
	Close() error
}

// Opener creates a fresh, isolated browser session.
type Opener interface {
	Open(ctx context.Context) (Page, error)
}
