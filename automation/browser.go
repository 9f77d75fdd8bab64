package automation

import (
	"context"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/stackscout/config"
	"github.com/use-agent/stackscout/models"
	"github.com/ysmood/gson"
)

// Browser owns the Chromium process. Every Open call creates a separate
// incognito context so sessions never share cookies.
type Browser struct {
	browser   *rod.Browser
	cfg       config.BrowserConfig
	timeouts  config.TimeoutConfig
	selectors config.SelectorConfig
}

// Launch starts Chromium and connects to it.
func Launch(cfg *config.Config) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Browser.Headless).
		NoSandbox(cfg.Browser.NoSandbox)

	if cfg.Browser.BrowserBin != "" {
		l = l.Bin(cfg.Browser.BrowserBin)
	}
	if cfg.Browser.Proxy != "" {
		l = l.Proxy(cfg.Browser.Proxy)
	}

	l.Set(flags.Flag("disable-features"), "TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewCampaignError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL, "headless", cfg.Browser.Headless)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewCampaignError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	return &Browser{
		browser:   browser,
		cfg:       cfg.Browser,
		timeouts:  cfg.Timeouts,
		selectors: cfg.Selectors,
	}, nil
}

// Open creates an incognito context with one page in it. The context is not
// bound to ctx so Close can still dispose of it after ctx is canceled.
func (b *Browser) Open(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	incognito, err := b.browser.Incognito()
	if err != nil {
		return nil, models.NewCampaignError(
			models.ErrCodeBrowserCrash,
			"failed to create browser context",
			err,
		)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, models.NewCampaignError(
			models.ErrCodeBrowserCrash,
			"failed to create page",
			err,
		)
	}

	// Both calls are best-effort: a session works without them, just slower.
	if len(b.cfg.BlockedURLPatterns) > 0 {
		if err := (proto.NetworkEnable{}).Call(page); err != nil {
			slog.Warn("failed to enable network domain", "error", err)
		} else if err := (proto.NetworkSetBlockedURLs{Urls: b.cfg.BlockedURLPatterns}).Call(page); err != nil {
			slog.Warn("failed to block resource URLs", "error", err)
		}
	}
	if b.cfg.AcceptLanguage != "" {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{"Accept-Language": b.cfg.AcceptLanguage}),
		}.Call(page)
	}

	return &rodPage{
		browser:     incognito,
		page:        page,
		timeouts:    b.timeouts,
		selectors:   b.selectors,
		typingDelay: b.cfg.TypingDelay,
	}, nil
}

// Close kills the browser process.
// Call this on shutdown to prevent zombie Chrome processes.
func (b *Browser) Close() {
	slog.Info("closing browser")
	if err := b.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
