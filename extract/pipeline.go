// Package extract implements the ordered chain of fallback heuristics that
// turns one rendered page visit into at most one download URL.
package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/use-agent/harvester/models"
)

// Target bundles everything one fetch exposes to the strategies: the live
// DOM handle, a lazy accessor for the rendered-HTML snapshot, the
// per-fetch captured-response set, and the selector timeout budget.
type Target struct {
	// Page is the live page handle. May be nil, in which case the static
	// selector scan is skipped (snapshot-only strategies still run).
	Page *rod.Page

	// HTML returns the rendered-HTML snapshot of the page.
	HTML func() (string, error)

	// Captured holds the network request URLs observed during this visit.
	Captured *models.CaptureSet

	// Budget is the total selector timeout, divided evenly across the
	// primary selector list.
	Budget time.Duration
}

// Strategy is one heuristic step in the pipeline. Extract returns the
// matched URL or "" for no match; an error means the strategy itself failed
// and the pipeline moves on.
type Strategy interface {
	Kind() models.Strategy
	Extract(ctx context.Context, t *Target) (string, error)
}

// Options configures the pipeline. Zero-value slices fall back to the
// package defaults.
type Options struct {
	PrimarySelectors []string
	PopupSelectors   []string
	ValidityMarkers  []string
	EmbedHosts       []string
	Logger           *slog.Logger
}

// Pipeline runs the extraction strategies in fixed order.
type Pipeline struct {
	strategies []Strategy
	log        *slog.Logger
}

// New builds the five-step pipeline: static selectors, captured responses,
// media elements, embedded frames, exhaustion.
func New(opts Options) *Pipeline {
	if opts.PrimarySelectors == nil {
		opts.PrimarySelectors = DefaultPrimarySelectors
	}
	if opts.PopupSelectors == nil {
		opts.PopupSelectors = DefaultPopupSelectors
	}
	if opts.ValidityMarkers == nil {
		opts.ValidityMarkers = DefaultValidityMarkers
	}
	if opts.EmbedHosts == nil {
		opts.EmbedHosts = DefaultEmbedHosts
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{
		log: log,
		strategies: []Strategy{
			&selectorScan{
				primary: opts.PrimarySelectors,
				popup:   opts.PopupSelectors,
				markers: opts.ValidityMarkers,
				log:     log,
			},
			&captureScan{markers: opts.ValidityMarkers},
			&mediaScan{markers: opts.ValidityMarkers},
			&frameScan{hosts: opts.EmbedHosts},
		},
	}
}

// Run executes the strategies in order and returns the first valid,
// non-empty result. A strategy failure is logged and swallowed; it never
// aborts the remaining strategies. Exhaustion is a soft outcome: an empty
// result and a warning, not an error.
func (p *Pipeline) Run(ctx context.Context, t *Target) models.ExtractionResult {
	for _, s := range p.strategies {
		u, err := s.Extract(ctx, t)
		if err != nil {
			p.log.Debug("extraction strategy failed",
				"strategy", s.Kind().String(),
				"error", err,
			)
			continue
		}
		if u != "" {
			p.log.Info("download URL found",
				"strategy", s.Kind().String(),
				"url", u,
			)
			return models.ExtractionResult{URL: u, Strategy: s.Kind()}
		}
	}

	p.log.Warn("no download URL found by any extraction strategy")
	return models.ExtractionResult{}
}
