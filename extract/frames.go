package extract

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/harvester/models"
)

// DefaultEmbedHosts is the allow-list of known video-hosting embed URL
// fragments. The frame scan matches against these instead of the generic
// validity predicate: embed URLs rarely carry recognizable extensions.
var DefaultEmbedHosts = []string{
	"youtube.com/embed",
	"player.vimeo.com",
	"dailymotion.com/embed",
	"streamable.com/e",
	"jwplayer",
	"brightcove",
	"vidyard",
	"wistia",
	"videojs",
}

// frameScan is strategy 4: return the first iframe whose src matches the
// embed-host allow-list.
type frameScan struct {
	hosts []string
}

func (f *frameScan) Kind() models.Strategy { return models.StrategyFrame }

func (f *frameScan) Extract(_ context.Context, t *Target) (string, error) {
	doc, err := snapshotDoc(t)
	if err != nil {
		return "", err
	}

	var found string
	doc.Find("iframe").EachWithBreak(func(_ int, frame *goquery.Selection) bool {
		if src, ok := frame.Attr("src"); ok && src != "" && containsAny(src, f.hosts) {
			found = src
			return false
		}
		return true
	})
	return found, nil
}
