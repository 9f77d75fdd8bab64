package campaign

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/use-agent/stackscout/automation"
	"github.com/use-agent/stackscout/models"
	"github.com/use-agent/stackscout/store"
	"golang.org/x/time/rate"
)

// SideLogger records domains for which no suggestion was found.
type SideLogger interface {
	Append(domain string) error
}

// BatchResult summarises one Processor.Run.
type BatchResult struct {
	// Attempted counts domains whose attempt completed, saved or not.
	Attempted int

	// Recorded counts domains whose record was durably written.
	Recorded int

	// Unpersisted lists, in order, the attempted domains whose record or
	// side-log entry could not be written.
	Unpersisted []models.DomainTask

	Outcomes map[models.OutcomeKind]int

	// PersistedPrefix counts the leading tasks of the batch that were all
	// durably recorded; it stops growing at the first unpersisted domain.
	PersistedPrefix int
}

// Processor drives single domains through a Page, classifies the outcome
// and persists it. It is the only writer of the result store and side log.
type Processor struct {
	results store.Recorder
	sideLog SideLogger
	pacer   *rate.Limiter
	now     func() time.Time

	// observe is called after each domain is persisted.
	observe func(models.DomainTask, models.Outcome)
}

// NewProcessor creates a Processor. pacing is the minimum gap between two
// domain attempts; zero disables pacing.
func NewProcessor(results store.Recorder, sideLog SideLogger, pacing time.Duration) *Processor {
	limit := rate.Inf
	if pacing > 0 {
		limit = rate.Every(pacing)
	}
	return &Processor{
		results: results,
		sideLog: sideLog,
		pacer:   rate.NewLimiter(limit, 1),
		now:     time.Now,
	}
}

// Run attempts every task in batch, in order, on page.
//
// One domain's failure never stops the batch. Only ctx cancellation ends it
// early, and the domain in flight at that point is not recorded.
func (p *Processor) Run(ctx context.Context, page automation.Page, batch []models.DomainTask) BatchResult {
	res := BatchResult{Outcomes: make(map[models.OutcomeKind]int)}

	for _, task := range batch {
		if err := p.pacer.Wait(ctx); err != nil {
			break
		}

		slog.Info("analyzing domain", "domain", task.Domain, "index", task.Index)
		outcome := p.attempt(ctx, page, task.Domain)
		if ctx.Err() != nil {
			slog.Warn("campaign canceled, in-flight domain not recorded", "domain", task.Domain)
			break
		}

		res.Attempted++
		res.Outcomes[outcome.Kind]++
		if err := p.record(task, outcome); err != nil {
			res.Unpersisted = append(res.Unpersisted, task)
		} else {
			res.Recorded++
			if len(res.Unpersisted) == 0 {
				res.PersistedPrefix++
			}
		}
		if p.observe != nil {
			p.observe(task, outcome)
		}

		// ── RESET ───────────────────────────────────────────────────
		if err := page.NavigateHome(ctx); err != nil {
			slog.Warn("failed to reset to home page", "domain", task.Domain, "error", err)
		}
	}
	return res
}

// attempt runs SUBMIT → SUGGESTION → RESULTS → EXTRACT and classifies the
// result. Panics from the automation layer become TransientError.
func (p *Processor) attempt(ctx context.Context, page automation.Page, domain string) (outcome models.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("automation panicked", "domain", domain, "panic", r)
			outcome = models.TransientError("panic: %v", r)
		}
	}()

	if err := page.SearchDomain(ctx, domain); err != nil {
		if errors.Is(err, automation.ErrNoSuggestion) {
			slog.Info("no suggestions available, skipping", "domain", domain)
			return models.NoSuggestion()
		}
		slog.Warn("error processing domain", "domain", domain, "error", err)
		return models.TransientError("%v", err)
	}

	// Past this point the attempt never fails hard.
	stack, err := page.ExtractStack(ctx)
	if err != nil {
		slog.Info("technology stack not found", "domain", domain, "error", err)
		return models.Success([]string{models.StackNoResult})
	}
	return models.Success(stack)
}

// record persists outcome before the processor moves on. Both sinks are
// always attempted; any failure is logged and returned so the caller keeps
// the domain out of the cursor. The batch continues either way.
func (p *Processor) record(task models.DomainTask, outcome models.Outcome) error {
	var sideErr error
	if outcome.Kind == models.OutcomeNoSuggestion {
		if sideErr = p.sideLog.Append(task.Domain); sideErr != nil {
			slog.Error("failed to append side log",
				"domain", task.Domain,
				"code", models.ErrCodePersist,
				"error", sideErr,
			)
		}
	}

	rec := models.NewRecord(task.Domain, outcome, p.now())
	if err := p.results.Append(rec); err != nil {
		slog.Error("failed to persist result",
			"domain", task.Domain,
			"code", models.ErrCodePersist,
			"error", err,
		)
		return models.NewCampaignError(models.ErrCodePersist, "record not written", errors.Join(sideErr, err))
	}
	if sideErr != nil {
		return models.NewCampaignError(models.ErrCodePersist, "side log entry not written", sideErr)
	}
	slog.Info("result recorded",
		"domain", task.Domain,
		"outcome", outcome.Kind,
		"lines", len(rec.TechnologyStack),
	)
	return nil
}
