// Package scraper owns the browser session: one lazily-created browser per
// run, one transient page per fetch, and the per-fetch network capture.
package scraper

import (
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/use-agent/harvester/config"
	"github.com/use-agent/harvester/extract"
	"github.com/use-agent/harvester/models"
	"github.com/use-agent/harvester/ratelimit"
	"github.com/use-agent/harvester/retry"
)

// Viewport applied to every page.
const (
	viewportWidth  = 1280
	viewportHeight = 800
)

// Session holds the browser shared by all fetches. It is safe for
// concurrent use; pages and capture sets are strictly per-fetch.
type Session struct {
	mu       sync.Mutex
	browser  *rod.Browser
	cfg      *config.Config
	limiter  *ratelimit.Limiter
	pipeline *extract.Pipeline
	navRetry retry.Policy
	log      *slog.Logger
}

// NewSession wires a session; the browser itself is launched lazily by Init.
func NewSession(cfg *config.Config, limiter *ratelimit.Limiter, pipeline *extract.Pipeline, navRetry retry.Policy) *Session {
	return &Session{
		cfg:      cfg,
		limiter:  limiter,
		pipeline: pipeline,
		navRetry: navRetry,
		log:      slog.Default(),
	}
}

// Init launches and connects the headless browser. It is idempotent: the
// first caller pays the launch cost, later callers return immediately.
func (s *Session) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		return nil
	}

	l := launcher.New().
		Headless(s.cfg.Headless).
		NoSandbox(s.cfg.NoSandbox)

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return models.NewHarvestError(models.ErrCodeBrowserCrash,
			"failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return models.NewHarvestError(models.ErrCodeBrowserCrash,
			"failed to connect to browser", err)
	}

	s.browser = browser
	s.log.Info("browser launched", "headless", s.cfg.Headless)
	return nil
}

// Close releases all browser resources. Safe to call without a prior Init
// and after a failed one.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser == nil {
		return
	}
	if err := s.browser.Close(); err != nil {
		s.log.Warn("browser close failed", "error", err)
	} else {
		s.log.Info("browser closed")
	}
	s.browser = nil
}
