package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/stackscout/api"
	"github.com/use-agent/stackscout/automation"
	"github.com/use-agent/stackscout/campaign"
	"github.com/use-agent/stackscout/config"
	"github.com/use-agent/stackscout/input"
	"github.com/use-agent/stackscout/store"
	"github.com/use-agent/stackscout/webhook"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	runID := uuid.NewString()
	slog.Info("stackscout starting",
		"runID", runID,
		"credentials", cfg.Campaign.CredentialsFile,
		"domains", cfg.Campaign.DomainsFile,
		"sessionQuota", cfg.Campaign.SessionQuota,
		"headless", cfg.Browser.Headless,
	)

	// ── 3. Load inputs ──────────────────────────────────────────────
	creds, err := input.LoadCredentials(cfg.Campaign.CredentialsFile)
	if err != nil {
		slog.Error("failed to load credentials", "error", err)
		return 1
	}
	domains, err := input.LoadDomains(cfg.Campaign.DomainsFile)
	if err != nil {
		slog.Error("failed to load domains", "error", err)
		return 1
	}
	slog.Info("inputs loaded", "credentials", len(creds), "domains", len(domains))

	// ── 4. Open durable sinks ───────────────────────────────────────
	results, err := store.OpenResults(cfg.Output.ResultsFile)
	if err != nil {
		slog.Error("failed to open result store", "error", err)
		return 1
	}
	sideLog, err := store.OpenSideLog(cfg.Output.SideLogFile)
	if err != nil {
		slog.Error("failed to open side log", "error", err)
		return 1
	}

	var recorder store.Recorder = results
	if cfg.Output.SQLitePath != "" {
		db, err := store.OpenSQLite(cfg.Output.SQLitePath)
		if err != nil {
			slog.Error("failed to open sqlite mirror", "error", err)
			return 1
		}
		defer db.Close()
		recorder = store.Multi{results, db}
		slog.Info("sqlite mirror enabled", "path", cfg.Output.SQLitePath)
	}

	// ── 5. Launch browser ───────────────────────────────────────────
	browser, err := automation.Launch(cfg)
	if err != nil {
		slog.Error("failed to launch browser", "error", err)
		return 1
	}
	defer browser.Close()

	// ── 6. Wire the campaign ────────────────────────────────────────
	processor := campaign.NewProcessor(recorder, sideLog, cfg.Campaign.PacingDelay)
	orch := campaign.NewOrchestrator(
		browser,
		campaign.NewCredentialPool(creds),
		campaign.NewDomainQueue(domains),
		processor,
		cfg.Campaign.SessionQuota,
	)

	var notifier *webhook.Notifier
	if cfg.Webhook.URL != "" {
		notifier = webhook.NewNotifier(cfg.Webhook.URL, cfg.Webhook.Secret, runID)
		orch.SetNotifier(notifier)
		slog.Info("webhook notifications enabled", "url", cfg.Webhook.URL)
	}

	// ── 7. Optional status server ───────────────────────────────────
	var srv *http.Server
	if cfg.Status.Addr != "" {
		srv = &http.Server{
			Addr:    cfg.Status.Addr,
			Handler: api.NewRouter(orch.Progress(), cfg.Status, time.Now()),
		}
		go func() {
			slog.Info("status server listening", "addr", cfg.Status.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("status server error", "error", err)
			}
		}()
	}

	// ── 8. Run until done or interrupted ────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary := orch.Run(ctx)
	if notifier != nil {
		notifier.Wait()
	}

	if out, err := json.Marshal(summary); err == nil {
		slog.Info("campaign summary", "summary", string(out))
	}

	// ── 9. Graceful shutdown ────────────────────────────────────────
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("status server forced shutdown", "error", err)
		}
	}

	// browser.Close() runs via defer and kills Chrome.
	slog.Info("stackscout stopped", "results", results.Len())
	if summary.StopReason == campaign.StopCanceled {
		return 130
	}
	return 0
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
