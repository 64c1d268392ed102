// Package batch fans a URL list out to concurrent fetch/extract calls and
// collects the results into an ordered, deduplicated link list.
package batch

import (
	"context"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/use-agent/harvester/models"
	"golang.org/x/sync/errgroup"
)

// Fetcher runs one full fetch-and-extract cycle. Failures are already
// absorbed at the fetch level: an empty result is the only failure signal.
type Fetcher interface {
	FetchAndExtract(ctx context.Context, url string) models.ExtractionResult
}

// Orchestrator runs a batch. DOM work for distinct pages proceeds
// concurrently up to the limit; actual network starts are paced solely by
// the fetcher's rate limiter.
type Orchestrator struct {
	fetcher     Fetcher
	concurrency int
	progress    bool
	log         *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProgress toggles the CLI progress bar.
func WithProgress(show bool) Option {
	return func(o *Orchestrator) { o.progress = show }
}

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// New creates an Orchestrator with the given concurrency limit.
func New(f Fetcher, concurrency int, opts ...Option) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 1
	}
	o := &Orchestrator{
		fetcher:     f,
		concurrency: concurrency,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes all URLs and returns the found download links in input
// order, deduplicated keeping first occurrences. No single URL's failure
// aborts the batch.
func (o *Orchestrator) Run(ctx context.Context, urls []string) []string {
	results := make([]models.ExtractionResult, len(urls))

	var bar *progressbar.ProgressBar
	if o.progress {
		bar = progressbar.Default(int64(len(urls)), "harvesting")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = o.fetcher.FetchAndExtract(ctx, u)
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	links := make([]string, 0, len(urls))
	for i, r := range results {
		if r.Found() {
			o.log.Info("link harvested",
				"page", urls[i],
				"url", r.URL,
				"strategy", r.Strategy.String(),
			)
			links = append(links, r.URL)
		} else {
			o.log.Warn("no download URL found", "page", urls[i])
		}
	}
	return Deduplicate(links)
}

// Deduplicate removes duplicate links, preserving first-seen order.
func Deduplicate(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, link := range links {
		if link == "" {
			continue
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}
