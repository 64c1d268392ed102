package scraper

import (
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/harvester/models"
)

// capturedKinds are the resource kinds whose request URLs are recorded.
var capturedKinds = map[proto.NetworkResourceType]struct{}{
	proto.NetworkResourceTypeFetch: {},
	proto.NetworkResourceTypeXHR:   {},
	proto.NetworkResourceTypeMedia: {},
}

// captureMarkers filter captured URLs down to ones that might carry video
// manifests or media payloads.
var captureMarkers = []string{
	"m3u8", "mpd", "video", "media", "stream", "mp4", "download",
}

// mountCapture installs a hijack router on the page that records matching
// request URLs into set and lets every request through unmodified. The
// router must be mounted before navigation or in-flight requests are missed.
//
// Interception via the Fetch domain is used instead of Network response
// events: enabling Network-domain listeners alongside a hijack router causes
// ERR_BLOCKED_BY_CLIENT on Chromium 145+, and the request URL observed here
// is identical to the response URL the extraction pipeline needs.
//
// The returned router is already running; the caller must Stop it once the
// fetch completes, which also detaches the listener and ends this set's
// population.
func mountCapture(page *rod.Page, set *models.CaptureSet, log *slog.Logger) *rod.HijackRouter {
	router := page.HijackRequests()

	_ = router.Add("*", "", func(h *rod.Hijack) {
		if _, ok := capturedKinds[h.Request.Type()]; ok {
			u := h.Request.URL().String()
			if matchesCaptureMarkers(u) {
				set.Add(u)
				log.Debug("captured network request", "url", u)
			}
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// router.Run() blocks; it exits when router.Stop() is called.
	go router.Run()

	return router
}

func matchesCaptureMarkers(u string) bool {
	for _, m := range captureMarkers {
		if strings.Contains(u, m) {
			return true
		}
	}
	return false
}
