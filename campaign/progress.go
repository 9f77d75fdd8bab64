package campaign

import (
	"sync"
	"time"

	"github.com/use-agent/stackscout/models"
)

// Campaign states reported by Progress.
const (
	StatePending    = "pending"
	StateLoggingIn  = "logging_in"
	StateProcessing = "processing"
	StateLoggingOut = "logging_out"
	StateDone       = "done"
)

// Progress is the live campaign view read by the status API.
// It is the only campaign state touched from more than one goroutine.
type Progress struct {
	mu sync.Mutex
	p  models.Progress
}

func newProgress() *Progress {
	return &Progress{p: models.Progress{
		State:    StatePending,
		Outcomes: make(map[models.OutcomeKind]int),
	}}
}

// Snapshot returns a copy of the current progress.
func (pr *Progress) Snapshot() models.Progress {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	out := pr.p
	out.Outcomes = make(map[models.OutcomeKind]int, len(pr.p.Outcomes))
	for k, v := range pr.p.Outcomes {
		out.Outcomes[k] = v
	}
	return out
}

func (pr *Progress) update(fn func(p *models.Progress)) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	fn(&pr.p)
}

func (pr *Progress) started(totalDomains, credentials int) {
	pr.update(func(p *models.Progress) {
		p.TotalDomains = totalDomains
		p.CredentialsLeft = credentials
		p.StartedAt = time.Now().UTC()
	})
}

func (pr *Progress) sessionStarted(identity string, credentialsLeft int) {
	pr.update(func(p *models.Progress) {
		p.State = StateLoggingIn
		p.CurrentIdentity = identity
		p.SessionProcessed = 0
		p.CredentialsLeft = credentialsLeft
	})
}

func (pr *Progress) loggedIn() {
	pr.update(func(p *models.Progress) {
		p.State = StateProcessing
		p.Sessions++
	})
}

func (pr *Progress) loginFailed() {
	pr.update(func(p *models.Progress) {
		p.LoginFailures++
		p.CurrentIdentity = ""
	})
}

func (pr *Progress) recorded(task models.DomainTask, o models.Outcome) {
	pr.update(func(p *models.Progress) {
		p.Processed++
		p.SessionProcessed++
		p.Outcomes[o.Kind]++
		p.LastDomain = task.Domain
	})
}

func (pr *Progress) loggingOut() {
	pr.update(func(p *models.Progress) {
		p.State = StateLoggingOut
	})
}

func (pr *Progress) finished() {
	pr.update(func(p *models.Progress) {
		p.State = StateDone
		p.CurrentIdentity = ""
	})
}
