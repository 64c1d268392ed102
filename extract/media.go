package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/harvester/models"
)

// mediaScan is strategy 3: walk all video elements in the rendered-HTML
// snapshot, checking each element's own src and then its nested source
// children. The snapshot is parsed offline so the scan needs no live
// element handles.
type mediaScan struct {
	markers []string
}

func (m *mediaScan) Kind() models.Strategy { return models.StrategyMedia }

func (m *mediaScan) Extract(_ context.Context, t *Target) (string, error) {
	doc, err := snapshotDoc(t)
	if err != nil {
		return "", err
	}

	var found string
	doc.Find("video").EachWithBreak(func(_ int, video *goquery.Selection) bool {
		if src, ok := video.Attr("src"); ok && IsValidDownloadURL(src, m.markers) {
			found = src
			return false
		}
		video.Find("source").EachWithBreak(func(_ int, source *goquery.Selection) bool {
			if src, ok := source.Attr("src"); ok && IsValidDownloadURL(src, m.markers) {
				found = src
				return false
			}
			return true
		})
		return found == ""
	})
	return found, nil
}

// snapshotDoc fetches and parses the rendered-HTML snapshot.
func snapshotDoc(t *Target) (*goquery.Document, error) {
	if t.HTML == nil {
		return goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	html, err := t.HTML()
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
