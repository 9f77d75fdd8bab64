package campaign

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/use-agent/stackscout/automation"
	"github.com/use-agent/stackscout/models"
	"github.com/use-agent/stackscout/store"
)

// script decides how the fake UI answers, keyed by domain or identity.
type script struct {
	badLogins    map[string]bool
	noSuggestion map[string]bool
	searchErr    map[string]error
	searchPanic  map[string]bool
	noStack      map[string]bool
	homeErr      error
	openErr      error
	onSearch     func(domain string)
}

// fakeOpener hands out fakePages that append to one shared event log.
type fakeOpener struct {
	mu     sync.Mutex
	script script
	events []string
	opened int
	closed int
}

func (f *fakeOpener) log(e string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeOpener) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeOpener) Open(ctx context.Context) (automation.Page, error) {
	if f.script.openErr != nil {
		return nil, f.script.openErr
	}
	f.mu.Lock()
	f.opened++
	f.mu.Unlock()
	return &fakePage{opener: f}, nil
}

type fakePage struct {
	opener *fakeOpener
	domain string
}

func (p *fakePage) Login(ctx context.Context, cred models.Credential) error {
	p.opener.log("login:" + cred.Identity)
	if p.opener.script.badLogins[cred.Identity] {
		return models.NewCampaignError(models.ErrCodeLoginFailed, "email field did not appear", context.DeadlineExceeded)
	}
	return nil
}

func (p *fakePage) Logout(ctx context.Context) error {
	p.opener.log("logout")
	return nil
}

func (p *fakePage) NavigateHome(ctx context.Context) error {
	p.opener.log("home")
	return p.opener.script.homeErr
}

func (p *fakePage) SearchDomain(ctx context.Context, domain string) error {
	p.opener.log("search:" + domain)
	p.domain = domain
	s := p.opener.script
	if s.onSearch != nil {
		s.onSearch(domain)
	}
	if s.searchPanic[domain] {
		panic("renderer crashed")
	}
	if err, ok := s.searchErr[domain]; ok {
		return err
	}
	if s.noSuggestion[domain] {
		return fmt.Errorf("%w: %s", automation.ErrNoSuggestion, domain)
	}
	return nil
}

func (p *fakePage) ExtractStack(ctx context.Context) ([]string, error) {
	if p.opener.script.noStack[p.domain] {
		return nil, automation.ErrStackNotFound
	}
	return []string{"Nginx", "React " + p.domain}, nil
}

func (p *fakePage) Close() error {
	p.opener.mu.Lock()
	p.opener.closed++
	p.opener.mu.Unlock()
	return nil
}

// harness wires an Orchestrator to real stores in a temp dir.
type harness struct {
	opener  *fakeOpener
	results *store.ResultStore
	sideLog *store.SideLog
	dir     string
}

func newHarness(t *testing.T, s script) *harness {
	t.Helper()
	dir := t.TempDir()
	results, err := store.OpenResults(filepath.Join(dir, "results.json"))
	require.NoError(t, err)
	sideLog, err := store.OpenSideLog(filepath.Join(dir, "side.txt"))
	require.NoError(t, err)
	return &harness{opener: &fakeOpener{script: s}, results: results, sideLog: sideLog, dir: dir}
}

func (h *harness) orchestrator(creds []models.Credential, domains []string) *Orchestrator {
	proc := NewProcessor(h.results, h.sideLog, 0)
	return NewOrchestrator(h.opener, NewCredentialPool(creds), NewDomainQueue(domains), proc, DefaultSessionQuota)
}

func (h *harness) recordedDomains() []string {
	recs := h.results.Records()
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Domain
	}
	return out
}

func creds(identities ...string) []models.Credential {
	out := make([]models.Credential, len(identities))
	for i, id := range identities {
		out[i] = models.Credential{Identity: id, Secret: "pw-" + id}
	}
	return out
}

func domainList(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("site%03d.test", i)
	}
	return out
}

var errRendererGone = errors.New("cdp: target closed")
