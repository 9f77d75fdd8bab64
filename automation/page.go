package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/stackscout/config"
	"github.com/use-agent/stackscout/extract"
	"github.com/use-agent/stackscout/models"
)

// domStableWindow is how long the DOM must stay unchanged to count as settled.
const domStableWindow = 300 * time.Millisecond

// rodPage implements Page on top of one rod tab inside an incognito context.
type rodPage struct {
	browser     *rod.Browser // the incognito context
	page        *rod.Page
	timeouts    config.TimeoutConfig
	selectors   config.SelectorConfig
	typingDelay time.Duration
}

// Login runs the sign-in flow:
//
//  1. Navigate home and wait for network idle
//  2. Click the "Sign in" button
//  3. Wait for the login form (LoginForm timeout)
//  4. Fill identity and secret, submit
//  5. Confirm: wait for the logged-in marker, or settle when none is configured
func (p *rodPage) Login(ctx context.Context, cred models.Credential) error {
	// ── 1. Home ─────────────────────────────────────────────────────
	if err := p.navigate(ctx, p.selectors.HomeURL); err != nil {
		return loginError("navigation to home page failed", err)
	}

	// ── 2. Sign-in button ───────────────────────────────────────────
	if err := p.clickByText(ctx, p.selectors.SignIn, p.selectors.SignInText, p.timeouts.Navigation); err != nil {
		return loginError("sign-in button not clickable", err)
	}

	// ── 3. Login form ───────────────────────────────────────────────
	formCtx, cancel := context.WithTimeout(ctx, p.timeouts.LoginForm)
	defer cancel()
	form := p.page.Context(formCtx)

	email, err := form.Element(p.selectors.Email)
	if err != nil {
		return loginError("email field did not appear", err)
	}
	password, err := form.Element(p.selectors.Password)
	if err != nil {
		return loginError("password field did not appear", err)
	}

	// ── 4. Fill + submit ────────────────────────────────────────────
	if err := fill(email, cred.Identity); err != nil {
		return loginError("failed to fill email", err)
	}
	if err := fill(password, cred.Secret); err != nil {
		return loginError("failed to fill password", err)
	}
	submit, err := form.Element(p.selectors.Submit)
	if err != nil {
		return loginError("submit button not found", err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return loginError("failed to click submit", err)
	}

	// ── 5. Confirm ──────────────────────────────────────────────────
	if p.selectors.LoggedIn == "" {
		return sleepCtx(ctx, p.timeouts.Settle)
	}
	confirmCtx, confirmCancel := context.WithTimeout(ctx, p.timeouts.LoginConfirm)
	defer confirmCancel()
	if _, err := p.page.Context(confirmCtx).Element(p.selectors.LoggedIn); err != nil {
		return loginError("logged-in marker did not appear", err)
	}
	return nil
}

// Logout clicks the logout control and waits for the network to go idle.
func (p *rodPage) Logout(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeouts.Logout)
	defer cancel()
	pg := p.page.Context(ctx)

	wait := pg.WaitRequestIdle(p.timeouts.NetworkIdle, nil, nil, nil)
	el, err := pg.ElementR(p.selectors.Logout, exactText(p.selectors.LogoutText))
	if err != nil {
		return categorizeError(err, "logout control not found")
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return categorizeError(err, "failed to click logout")
	}
	wait()
	return nil
}

// NavigateHome loads the home page to reset the search UI.
func (p *rodPage) NavigateHome(ctx context.Context) error {
	return p.navigate(ctx, p.selectors.HomeURL)
}

// SearchDomain walks SUBMIT → AWAIT_SUGGESTION → SELECT → AWAIT_RESULTS.
func (p *rodPage) SearchDomain(ctx context.Context, domain string) error {
	// ── SUBMIT ──────────────────────────────────────────────────────
	submitCtx, submitCancel := context.WithTimeout(ctx, p.timeouts.Navigation)
	defer submitCancel()
	search, err := p.page.Context(submitCtx).Element(p.selectors.Search)
	if err != nil {
		return categorizeError(err, "search field not found")
	}
	if err := search.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return categorizeError(err, "failed to focus search field")
	}
	if err := typeSlowly(submitCtx, p.page, " "+domain, p.typingDelay); err != nil {
		return categorizeError(err, "failed to type domain")
	}

	// ── AWAIT_SUGGESTION (T1) ───────────────────────────────────────
	suggCtx, suggCancel := context.WithTimeout(ctx, p.timeouts.Suggestion)
	defer suggCancel()
	suggestion, err := p.page.Context(suggCtx).ElementR(p.selectors.Suggestion, exactText(domain))
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrNoSuggestion, domain)
		}
		return categorizeError(err, "suggestion lookup failed")
	}

	// ── SELECT + AWAIT_RESULTS (T2) ─────────────────────────────────
	resCtx, resCancel := context.WithTimeout(ctx, p.timeouts.Results)
	defer resCancel()
	pg := p.page.Context(resCtx)

	// The idle listener must exist before the click or in-flight requests are missed.
	wait := pg.WaitRequestIdle(p.timeouts.NetworkIdle, nil, nil, nil)
	if err := suggestion.Context(resCtx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return categorizeError(err, "failed to select suggestion")
	}
	wait()

	// Condition wait first; the fixed settle delay only bounds it.
	if stableErr := p.page.Context(ctx).Timeout(p.timeouts.Settle).WaitDOMStable(domStableWindow, 0); stableErr != nil {
		slog.Debug("results DOM did not settle, proceeding with current DOM",
			"domain", domain,
			"error", stableErr,
		)
	}
	return ctx.Err()
}

// ExtractStack waits for the results region and splits it into lines.
func (p *rodPage) ExtractStack(ctx context.Context) ([]string, error) {
	resCtx, cancel := context.WithTimeout(ctx, p.timeouts.Results)
	defer cancel()
	pg := p.page.Context(resCtx)

	el, err := pg.Element(p.selectors.Results)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrStackNotFound
		}
		return nil, categorizeError(err, "results region lookup failed")
	}
	if err := el.WaitVisible(); err != nil {
		return nil, fmt.Errorf("%w: results region never became visible", ErrStackNotFound)
	}

	rawHTML, err := el.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to read results region")
	}

	lines, err := extract.Lines(rawHTML, p.selectors.StackItem)
	if err != nil {
		return nil, models.NewCampaignError(models.ErrCodeExtraction, "failed to parse results region", err)
	}
	if len(lines) == 0 {
		return nil, ErrStackNotFound
	}
	return lines, nil
}

// Close disposes of the page and its incognito context.
func (p *rodPage) Close() error {
	pageErr := p.page.Close()
	ctxErr := p.browser.Close()
	return errors.Join(pageErr, ctxErr)
}

// navigate loads url and waits for network idle, bounded by the navigation timeout.
// The idle listener is registered before Navigate so early requests are counted.
// A page that never goes idle is not an error: the wait just ends at the timeout.
func (p *rodPage) navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, p.timeouts.Navigation)
	defer cancel()
	pg := p.page.Context(navCtx)

	wait := pg.WaitRequestIdle(p.timeouts.NetworkIdle, nil, nil, nil)
	if err := pg.Navigate(url); err != nil {
		return categorizeError(err, "navigation to "+url+" failed")
	}
	wait()
	return ctx.Err()
}

// clickByText clicks the first element matching selector whose text is text.
func (p *rodPage) clickByText(ctx context.Context, selector, text string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pg := p.page.Context(ctx)

	wait := pg.WaitRequestIdle(p.timeouts.NetworkIdle, nil, nil, nil)
	el, err := pg.ElementR(selector, exactText(text))
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	wait()
	return nil
}

// fill replaces the element's value with text.
func fill(el *rod.Element, text string) error {
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(text)
}

// exactText builds the element-text regex for ElementR: the whole text,
// surrounding whitespace allowed.
func exactText(text string) string {
	return `^\s*` + regexp.QuoteMeta(text) + `\s*$`
}

func loginError(msg string, err error) *models.CampaignError {
	return models.NewCampaignError(models.ErrCodeLoginFailed, msg, err)
}

// categorizeError wraps raw errors into typed CampaignErrors so callers can
// log a stable code.
func categorizeError(err error, msg string) *models.CampaignError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewCampaignError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewCampaignError(models.ErrCodeTimeout, "operation canceled", err)
	default:
		return models.NewCampaignError(models.ErrCodeNavigation, msg, err)
	}
}
