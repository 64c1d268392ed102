package extract

import (
	"context"

	"github.com/use-agent/harvester/models"
)

// responseMarkers narrow the captured set to URLs that look like media
// payloads or manifests. Note "download" is deliberately absent here: the
// capture listener already admits it, but a bare "download" capture is too
// weak a signal without a DOM match to back it.
var responseMarkers = []string{".mp4", ".m3u8", ".mpd", "/media/", "/video/", "stream"}

// captureScan is strategy 2: return the first captured network URL that
// carries a media marker and passes the validity predicate.
type captureScan struct {
	markers []string
}

func (c *captureScan) Kind() models.Strategy { return models.StrategyCapture }

func (c *captureScan) Extract(_ context.Context, t *Target) (string, error) {
	if t.Captured == nil {
		return "", nil
	}
	for _, u := range t.Captured.Snapshot() {
		if containsAny(u, responseMarkers) && IsValidDownloadURL(u, c.markers) {
			return u, nil
		}
	}
	return "", nil
}
