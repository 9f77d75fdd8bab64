package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Campaign  CampaignConfig
	Browser   BrowserConfig
	Timeouts  TimeoutConfig
	Selectors SelectorConfig
	Output    OutputConfig
	Status    StatusConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// CampaignConfig controls the input files and the rotation schedule.
type CampaignConfig struct {
	// CredentialsFile holds blank-line separated identity/secret blocks.
	CredentialsFile string // default: "credentials.txt"

	// DomainsFile holds one domain per line.
	DomainsFile string // default: "domains.txt"

	// SessionQuota is the maximum number of domains processed per login.
	SessionQuota int // default: 50

	// PacingDelay is the minimum gap between two domain attempts.
	PacingDelay time.Duration // default: 2s
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: false

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the proxy URL for all browser traffic.
	Proxy string

	// BlockedURLPatterns are URL patterns the browser never loads.
	// default: ["*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.woff", "*.woff2"]
	BlockedURLPatterns []string

	// AcceptLanguage is sent as an extra header on every session page.
	AcceptLanguage string // default: "en-US,en;q=0.9"

	// TypingDelay is the pause between characters typed into the search box.
	TypingDelay time.Duration // default: 350ms
}

// TimeoutConfig bounds every wait the automation layer performs.
type TimeoutConfig struct {
	// Navigation bounds page.Navigate plus the network-idle wait after it.
	Navigation time.Duration // default: 60s

	// LoginForm bounds the wait for the login form fields.
	LoginForm time.Duration // default: 120s

	// LoginConfirm bounds the wait for the logged-in marker.
	LoginConfirm time.Duration // default: 30s

	// Suggestion is T1: the wait for the autocomplete entry.
	Suggestion time.Duration // default: 15s

	// Results is T2: the wait for the results region.
	Results time.Duration // default: 20s

	// NetworkIdle is the quiet window that counts as network idle.
	NetworkIdle time.Duration // default: 500ms

	// Settle is the fixed fallback delay when the DOM never stabilises.
	Settle time.Duration // default: 5s

	// Logout bounds the logout click and its network-idle wait.
	Logout time.Duration // default: 30s
}

// SelectorConfig names the elements of the remote UI.
type SelectorConfig struct {
	HomeURL    string // default: "https://www.wappalyzer.com/"
	SignIn     string // default: "span.v-btn__content"
	SignInText string // default: "Sign in"
	Email      string // default: "#input-355"
	Password   string // default: "#input-356"
	Submit     string // default: `button[type="submit"]`
	LoggedIn   string // empty: fall back to the settle delay
	Search     string // default: "#input-80"
	Suggestion string // default: "*:not(input):not(textarea)"
	Results    string // default: "main"
	StackItem  string // optional: one stack line per matching element
	Logout     string // default: "a, button, span"
	LogoutText string // default: "Logout"
}

// OutputConfig names the durable sinks.
type OutputConfig struct {
	// ResultsFile is the JSON array of result records.
	ResultsFile string // default: "website_analysis_results.json"

	// SideLogFile lists domains that produced no suggestion.
	SideLogFile string // default: "domains_without_suggestions.txt"

	// SQLitePath enables the SQLite mirror when non-empty.
	SQLitePath string
}

// StatusConfig controls the optional read-only status API.
type StatusConfig struct {
	// Addr is the listen address; empty disables the server.
	Addr string

	// Mode is the gin mode: "debug", "release", "test"; default: "release".
	Mode string

	// APIKeys protects the status endpoints when non-empty.
	APIKeys []string

	// RequestsPerSecond is the per-client request rate; default: 5.
	RequestsPerSecond int

	// Burst is the per-client burst size; default: 10.
	Burst int
}

// WebhookConfig controls campaign event delivery.
type WebhookConfig struct {
	// URL receives session and campaign events; empty disables delivery.
	URL string

	// Secret signs event bodies with HMAC-SHA256 when non-empty.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Campaign: CampaignConfig{
			CredentialsFile: envOr("STACKSCOUT_CREDENTIALS_FILE", "credentials.txt"),
			DomainsFile:     envOr("STACKSCOUT_DOMAINS_FILE", "domains.txt"),
			SessionQuota:    envIntOr("STACKSCOUT_SESSION_QUOTA", 50),
			PacingDelay:     envDurationOr("STACKSCOUT_PACING_DELAY", 2*time.Second),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("STACKSCOUT_HEADLESS", false),
			NoSandbox:  envBoolOr("STACKSCOUT_NO_SANDBOX", false),
			BrowserBin: os.Getenv("STACKSCOUT_BROWSER_BIN"),
			Proxy:      os.Getenv("STACKSCOUT_PROXY"),
			BlockedURLPatterns: envSliceOr("STACKSCOUT_BLOCKED_URLS", []string{
				"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.woff", "*.woff2",
			}),
			AcceptLanguage: envOr("STACKSCOUT_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			TypingDelay:    envDurationOr("STACKSCOUT_TYPING_DELAY", 350*time.Millisecond),
		},
		Timeouts: TimeoutConfig{
			Navigation:   envDurationOr("STACKSCOUT_NAV_TIMEOUT", 60*time.Second),
			LoginForm:    envDurationOr("STACKSCOUT_LOGIN_FORM_TIMEOUT", 120*time.Second),
			LoginConfirm: envDurationOr("STACKSCOUT_LOGIN_CONFIRM_TIMEOUT", 30*time.Second),
			Suggestion:   envDurationOr("STACKSCOUT_SUGGESTION_TIMEOUT", 15*time.Second),
			Results:      envDurationOr("STACKSCOUT_RESULTS_TIMEOUT", 20*time.Second),
			NetworkIdle:  envDurationOr("STACKSCOUT_NETWORK_IDLE", 500*time.Millisecond),
			Settle:       envDurationOr("STACKSCOUT_SETTLE_DELAY", 5*time.Second),
			Logout:       envDurationOr("STACKSCOUT_LOGOUT_TIMEOUT", 30*time.Second),
		},
		Selectors: SelectorConfig{
			HomeURL:    envOr("STACKSCOUT_HOME_URL", "https://www.wappalyzer.com/"),
			SignIn:     envOr("STACKSCOUT_SEL_SIGN_IN", "span.v-btn__content"),
			SignInText: envOr("STACKSCOUT_SEL_SIGN_IN_TEXT", "Sign in"),
			Email:      envOr("STACKSCOUT_SEL_EMAIL", "#input-355"),
			Password:   envOr("STACKSCOUT_SEL_PASSWORD", "#input-356"),
			Submit:     envOr("STACKSCOUT_SEL_SUBMIT", `button[type="submit"]`),
			LoggedIn:   os.Getenv("STACKSCOUT_SEL_LOGGED_IN"),
			Search:     envOr("STACKSCOUT_SEL_SEARCH", "#input-80"),
			Suggestion: envOr("STACKSCOUT_SEL_SUGGESTION", "*:not(input):not(textarea)"),
			Results:    envOr("STACKSCOUT_SEL_RESULTS", "main"),
			StackItem:  os.Getenv("STACKSCOUT_SEL_STACK_ITEM"),
			Logout:     envOr("STACKSCOUT_SEL_LOGOUT", "a, button, span"),
			LogoutText: envOr("STACKSCOUT_SEL_LOGOUT_TEXT", "Logout"),
		},
		Output: OutputConfig{
			ResultsFile: envOr("STACKSCOUT_RESULTS_FILE", "website_analysis_results.json"),
			SideLogFile: envOr("STACKSCOUT_SIDE_LOG_FILE", "domains_without_suggestions.txt"),
			SQLitePath:  os.Getenv("STACKSCOUT_SQLITE_PATH"),
		},
		Status: StatusConfig{
			Addr:    os.Getenv("STACKSCOUT_STATUS_ADDR"),
			Mode:    envOr("STACKSCOUT_STATUS_MODE", "release"),
			APIKeys: envSliceOr("STACKSCOUT_STATUS_API_KEYS", nil),

			RequestsPerSecond: envIntOr("STACKSCOUT_STATUS_RPS", 5),
			Burst:             envIntOr("STACKSCOUT_STATUS_BURST", 10),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("STACKSCOUT_WEBHOOK_URL"),
			Secret: os.Getenv("STACKSCOUT_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("STACKSCOUT_LOG_LEVEL", "info"),
			Format: envOr("STACKSCOUT_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
