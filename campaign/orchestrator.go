package campaign

import (
	"context"
	"log/slog"

	"github.com/use-agent/stackscout/automation"
	"github.com/use-agent/stackscout/models"
)

// DefaultSessionQuota is the maximum number of domains per login session.
const DefaultSessionQuota = 50

// StopReason says why a campaign run ended.
type StopReason string

const (
	StopQueueExhausted       StopReason = "queue_exhausted"
	StopCredentialsExhausted StopReason = "credentials_exhausted"
	StopCanceled             StopReason = "canceled"
)

// Cursor is the index of the first domain that has no persisted record from
// this run. It only moves over durably written records and stops for good at
// the first domain whose record could not be written.
type Cursor struct {
	NextDomainIndex int `json:"next_domain_index"`
}

// SessionReport describes one credential's session.
type SessionReport struct {
	Identity string                     `json:"identity"`
	Login    models.OutcomeKind         `json:"login"`
	Message  string                     `json:"message,omitempty"`
	Domains  int                        `json:"domains"`
	Outcomes map[models.OutcomeKind]int `json:"outcomes,omitempty"`

	Unpersisted []string `json:"unpersisted,omitempty"`
}

// Summary is the result of a campaign run.
type Summary struct {
	Sessions      int                        `json:"sessions"`
	LoginFailures int                        `json:"login_failures"`
	Processed     int                        `json:"processed"`
	Outcomes      map[models.OutcomeKind]int `json:"outcomes"`
	Remaining     int                        `json:"remaining"`
	NextDomain    string                     `json:"next_domain,omitempty"`
	StopReason    StopReason                 `json:"stop_reason"`
	Cursor        Cursor                     `json:"cursor"`

	// Unpersisted lists attempted domains whose record was not written.
	Unpersisted []string `json:"unpersisted,omitempty"`
}

// Notifier receives session and campaign events. Implementations must not
// block for long; the campaign waits for them.
type Notifier interface {
	SessionCompleted(ctx context.Context, report SessionReport)
	CampaignCompleted(ctx context.Context, summary Summary)
}

// Orchestrator rotates credentials over the domain queue: one session per
// credential, at most quota domains per session, strictly sequential.
type Orchestrator struct {
	opener    automation.Opener
	creds     *CredentialPool
	queue     *DomainQueue
	processor *Processor
	quota     int
	notifier  Notifier
	progress  *Progress
	cursor    Cursor

	// cursorStuck is set once a record fails to persist.
	cursorStuck bool
}

// NewOrchestrator wires the scheduler. A quota <= 0 uses DefaultSessionQuota.
func NewOrchestrator(opener automation.Opener, creds *CredentialPool, queue *DomainQueue, processor *Processor, quota int) *Orchestrator {
	if quota <= 0 {
		quota = DefaultSessionQuota
	}
	o := &Orchestrator{
		opener:    opener,
		creds:     creds,
		queue:     queue,
		processor: processor,
		quota:     quota,
		progress:  newProgress(),
	}
	processor.observe = o.progress.recorded
	return o
}

// SetNotifier sets the event sink. Nil disables notifications.
func (o *Orchestrator) SetNotifier(n Notifier) {
	o.notifier = n
}

// Progress returns the live progress view.
func (o *Orchestrator) Progress() *Progress {
	return o.progress
}

// Run executes the campaign until the queue or the credential pool is
// exhausted, or ctx is canceled.
//
//	START         queue exhausted → DONE; pool exhausted → DONE
//	LOGIN         open session, log in; failure → discard session → START
//	PROCESS_BATCH take(quota), run the processor
//	LOGOUT        log out, discard session → START
func (o *Orchestrator) Run(ctx context.Context) Summary {
	summary := Summary{Outcomes: make(map[models.OutcomeKind]int)}
	o.progress.started(o.queue.Len(), o.creds.Remaining())

	for {
		if ctx.Err() != nil {
			summary.StopReason = StopCanceled
			break
		}
		if o.queue.IsExhausted() {
			summary.StopReason = StopQueueExhausted
			break
		}
		cred, ok := o.creds.Next()
		if !ok {
			summary.StopReason = StopCredentialsExhausted
			break
		}

		report := o.runSession(ctx, cred)
		if report.Login == models.OutcomeLoginFailure {
			summary.LoginFailures++
		} else {
			summary.Sessions++
		}
		summary.Processed += report.Domains
		for k, v := range report.Outcomes {
			summary.Outcomes[k] += v
		}
		summary.Unpersisted = append(summary.Unpersisted, report.Unpersisted...)
		if o.notifier != nil {
			o.notifier.SessionCompleted(ctx, report)
		}
	}

	summary.Cursor = o.cursor
	pending := o.queue.From(o.cursor.NextDomainIndex)
	summary.Remaining = len(pending)
	if len(pending) > 0 {
		summary.NextDomain = pending[0].Domain
	}
	o.progress.finished()

	slog.Info("campaign finished",
		"reason", summary.StopReason,
		"sessions", summary.Sessions,
		"loginFailures", summary.LoginFailures,
		"processed", summary.Processed,
		"remaining", summary.Remaining,
	)
	if len(summary.Unpersisted) > 0 {
		slog.Error("some results were not persisted",
			"code", models.ErrCodePersist,
			"domains", summary.Unpersisted,
		)
	}
	if summary.StopReason == StopCredentialsExhausted && summary.Remaining > 0 {
		slog.Warn("credentials exhausted before all domains were processed",
			"remaining", summary.Remaining,
			"nextDomain", summary.NextDomain,
		)
	}

	if o.notifier != nil {
		o.notifier.CampaignCompleted(context.WithoutCancel(ctx), summary)
	}
	return summary
}

// runSession handles one credential from LOGIN to LOGOUT.
func (o *Orchestrator) runSession(ctx context.Context, cred models.Credential) SessionReport {
	report := SessionReport{Identity: cred.Identity, Login: models.OutcomeSuccess}
	o.progress.sessionStarted(cred.Identity, o.creds.Remaining())
	slog.Info("logging in", "identity", cred.Identity)

	page, err := o.opener.Open(ctx)
	if err != nil {
		return o.loginFailed(report, err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			slog.Warn("failed to close session", "identity", cred.Identity, "error", err)
		}
	}()

	// ── LOGIN ───────────────────────────────────────────────────────
	if err := page.Login(ctx, cred); err != nil {
		return o.loginFailed(report, err)
	}
	o.progress.loggedIn()

	// ── PROCESS_BATCH ───────────────────────────────────────────────
	batch, remaining := o.queue.Take(o.quota)
	slog.Info("processing batch",
		"identity", cred.Identity,
		"batch", len(batch),
		"remainingAfterBatch", remaining,
	)
	res := o.processor.Run(ctx, page, batch)
	if !o.cursorStuck {
		o.cursor.NextDomainIndex += res.PersistedPrefix
		o.cursorStuck = len(res.Unpersisted) > 0
	}
	report.Domains = res.Attempted
	report.Outcomes = res.Outcomes
	for _, task := range res.Unpersisted {
		report.Unpersisted = append(report.Unpersisted, task.Domain)
	}

	// ── LOGOUT ──────────────────────────────────────────────────────
	// Logout still runs after cancellation; its own timeout bounds it.
	o.progress.loggingOut()
	slog.Info("logging out", "identity", cred.Identity)
	if err := page.Logout(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("logout failed", "identity", cred.Identity, "error", err)
	} else {
		slog.Info("logout successful", "identity", cred.Identity)
	}
	return report
}

func (o *Orchestrator) loginFailed(report SessionReport, err error) SessionReport {
	outcome := models.LoginFailure(err.Error())
	report.Login = outcome.Kind
	report.Message = outcome.Message
	o.progress.loginFailed()
	slog.Warn("login failed, moving to next credential",
		"identity", report.Identity,
		"code", models.ErrCodeLoginFailed,
		"error", err,
	)
	return report
}
