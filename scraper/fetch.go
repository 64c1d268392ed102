package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/harvester/extract"
	"github.com/use-agent/harvester/models"
	"github.com/ysmood/gson"
)

// settleDelay is the fixed pause after navigation, admitting late
// asynchronous requests before extraction begins.
const settleDelay = 2 * time.Second

// FetchAndExtract runs one full cycle for a URL: rate-limit gate, lazy
// browser init, navigation with per-visit network capture, and the
// extraction pipeline. Every failure is absorbed into an empty result for
// this URL only; one page's failure never aborts a batch.
func (s *Session) FetchAndExtract(ctx context.Context, url string) models.ExtractionResult {
	if err := s.limiter.Acquire(ctx); err != nil {
		s.log.Warn("rate-limit wait aborted", "url", url, "error", err)
		return models.ExtractionResult{}
	}

	if err := s.Init(); err != nil {
		s.log.Error("browser initialization failed", "url", url, "error", err)
		return models.ExtractionResult{}
	}

	s.log.Info("processing page", "url", url)

	// Arena-per-fetch: a fresh set owned exclusively by this call, so
	// concurrent fetches can never see each other's captures.
	captured := models.NewCaptureSet()

	res, err := s.fetchOne(ctx, url, captured)
	if err != nil {
		s.log.Error("page fetch failed", "url", url, "error", err)
		return models.ExtractionResult{}
	}
	return res
}

// fetchOne opens a page, captures matching network traffic, navigates, and
// runs the pipeline. The page is closed and the capture router stopped on
// every exit path.
func (s *Session) fetchOne(ctx context.Context, url string, captured *models.CaptureSet) (models.ExtractionResult, error) {
	timeout := s.cfg.TimeoutDuration()

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return models.ExtractionResult{}, models.NewHarvestError(
			models.ErrCodeBrowserCrash, "failed to open page", err)
	}
	defer func() { _ = page.Close() }()

	// Stealth and capture must be in place before navigation; neither takes
	// effect for loads that precede them.
	if s.cfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			s.log.Warn("stealth injection failed, proceeding without it", "error", evalErr)
		}
	}

	_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  viewportWidth,
		Height: viewportHeight,
	})
	if s.cfg.UserAgent != "" {
		_ = proto.NetworkSetUserAgentOverride{UserAgent: s.cfg.UserAgent}.Call(page)
	}
	if len(s.cfg.Headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(s.cfg.Headers),
		}.Call(page)
	}

	router := mountCapture(page, captured, s.log)
	defer func() { _ = router.Stop() }()

	p := page.Context(ctx)

	// Navigate under the retry policy; each attempt gets the full timeout.
	navErr := s.navRetry.Do(ctx, func() error {
		return p.Timeout(timeout).Navigate(url)
	})
	if navErr != nil {
		return models.ExtractionResult{}, categorizeError(navErr, "navigation failed")
	}

	// Wait for the network to settle. WaitDOMStable stands in for a request
	// idle waiter: the Fetch domain used by the capture router conflicts
	// with WaitRequestIdle on Chromium 145+.
	if stableErr := p.Timeout(timeout).WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		s.log.Debug("DOM did not stabilize, proceeding with current state",
			"url", url, "error", stableErr)
	}

	// Fixed settle delay so late asynchronous requests land in the set.
	if err := sleepCtx(ctx, settleDelay); err != nil {
		return models.ExtractionResult{}, categorizeError(err, "settle interrupted")
	}

	target := &extract.Target{
		Page:     p,
		HTML:     func() (string, error) { return p.HTML() },
		Captured: captured,
		Budget:   timeout,
	}
	return s.pipeline.Run(ctx, target), nil
}

// categorizeError wraps raw navigation errors into typed HarvestErrors.
func categorizeError(err error, msg string) *models.HarvestError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewHarvestError(models.ErrCodeNavigation, msg+": timed out", err)
	case errors.Is(err, context.Canceled):
		return models.NewHarvestError(models.ErrCodeNavigation, msg+": cancelled", err)
	default:
		return models.NewHarvestError(models.ErrCodeNavigation, msg, err)
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

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
