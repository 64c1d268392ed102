package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/harvester/models"
)

// DefaultPrimarySelectors is the prioritized selector list for the static
// scan: explicit download-button markers first, then href patterns for
// media extensions, then generic buttons and data attributes.
var DefaultPrimarySelectors = []string{
	"a.download-button",
	"a[data-download]",
	"a.video-download",
	"a[href*='download']",
	"a[href*='.mp4']",
	"a[href*='.m3u8']",
	"a[href*='.mpd']",
	"button.download-button",
	"[data-download-url]",
	"[data-video-url]",
}

// DefaultPopupSelectors are re-scanned after clicking a button, looking for
// a link the click revealed.
var DefaultPopupSelectors = []string{
	"a.download-link",
	"a[download]",
	".modal a[href*='.mp4']",
	".popup a[href*='download']",
}

// candidateAttrs are probed on each matched element, in order.
var candidateAttrs = []string{"href", "data-download-url", "data-video-url"}

// clickSettleDelay is the fixed pause after clicking a button, allowing a
// popup or reveal to finish before the popup selectors are scanned.
const clickSettleDelay = 2 * time.Second

// selectorScan is strategy 1: walk the prioritized selector list, probing
// attributes and clicking buttons. The total budget is divided evenly across
// all selectors regardless of how many actually run before a match.
type selectorScan struct {
	primary []string
	popup   []string
	markers []string
	log     *slog.Logger
}

func (s *selectorScan) Kind() models.Strategy { return models.StrategySelector }

func (s *selectorScan) Extract(ctx context.Context, t *Target) (string, error) {
	if t.Page == nil || len(s.primary) == 0 {
		return "", nil
	}

	perSelector := t.Budget / time.Duration(len(s.primary))

	for _, sel := range s.primary {
		u, err := s.trySelector(ctx, t.Page, sel, perSelector)
		if err != nil {
			// One selector's failure never aborts the rest.
			s.log.Debug("selector yielded no match", "selector", sel, "error", err)
			continue
		}
		if u != "" {
			return u, nil
		}
	}
	return "", nil
}

// trySelector waits up to budget for one visible element matching sel, then
// probes its attributes; for clickable controls with no attribute hit it
// clicks, settles, and re-scans the popup selectors.
func (s *selectorScan) trySelector(ctx context.Context, page *rod.Page, sel string, budget time.Duration) (string, error) {
	p := page.Context(ctx).Timeout(budget)

	el, err := p.Element(sel)
	if err != nil {
		return "", err
	}
	if err := el.WaitVisible(); err != nil {
		return "", err
	}

	if u := firstValidAttr(el.Attribute, s.markers); u != "" {
		return u, nil
	}

	// Clickable control with no attribute hit: click it and look for a
	// revealed link.
	if strings.Contains(sel, "button") {
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return "", err
		}
		if err := settle(ctx, clickSettleDelay); err != nil {
			return "", err
		}
		return s.scanPopups(ctx, page), nil
	}

	return "", nil
}

// scanPopups queries the popup selectors without waiting; elements either
// appeared during the settle delay or they are not coming.
func (s *selectorScan) scanPopups(ctx context.Context, page *rod.Page) string {
	p := page.Context(ctx).Sleeper(rod.NotFoundSleeper)
	for _, sel := range s.popup {
		el, err := p.Element(sel)
		if err != nil {
			continue
		}
		if u := firstValidAttr(el.Attribute, s.markers); u != "" {
			return u
		}
	}
	return ""
}

// attrGetter reads one attribute from an element. Matches the signature of
// rod's Element.Attribute.
type attrGetter func(name string) (*string, error)

// firstValidAttr probes the candidate attributes in order and returns the
// first value passing the validity predicate. A read failure on one
// attribute is treated as no match for that attribute.
func firstValidAttr(get attrGetter, markers []string) string {
	for _, name := range candidateAttrs {
		v, err := get(name)
		if err != nil || v == nil {
			continue
		}
		if IsValidDownloadURL(*v, markers) {
			return *v
		}
	}
	return ""
}

// settle pauses for d, honoring context cancellation.
func settle(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
