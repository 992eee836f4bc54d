package extract

import (
	"context"
	"log"
	"time"

	"finextract/internal/domain"
	"finextract/internal/port"
)

// Options tunes the extraction engine. Zero values select the package defaults.
type Options struct {
	Window            int
	MaxYears          int
	ExcerptLength     int
	CoverageThreshold float64
	EscalationTimeout time.Duration
}

// Engine runs the full per-document pipeline: metadata detection, proximity extraction
// for every (item, year) slot, and escalation plus merge when coverage is too low.
type Engine struct {
	catalog   domain.Catalog
	detector  *MetadataDetector
	proximity *ProximityExtractor
	escalator *Escalator
	threshold float64
}

// NewEngine creates an Engine. parser may be nil, which disables escalation.
func NewEngine(catalog domain.Catalog, parser port.DocumentParser, opts Options) *Engine {
	threshold := opts.CoverageThreshold
	if threshold <= 0 {
		threshold = DefaultCoverageThreshold
	}
	return &Engine{
		catalog:   catalog,
		detector:  NewMetadataDetector(opts.MaxYears),
		proximity: NewProximityExtractor(opts.Window),
		escalator: NewEscalator(parser, opts.ExcerptLength, opts.EscalationTimeout),
		threshold: threshold,
	}
}

// Catalog returns the line items this engine extracts.
func (e *Engine) Catalog() domain.Catalog {
	return e.catalog
}

// Extract processes one document's text. It never fails: missing data is reported as
// domain.NotFound and escalation problems only reduce coverage.
func (e *Engine) Extract(ctx context.Context, source, text string) *domain.DocumentExtraction {
	currency, years := e.detector.Detect(text)
	result := domain.NewDocumentExtraction(source, currency, years, e.catalog)

	h := newHaystack(text)
	for _, item := range e.catalog {
		for _, year := range years {
			if v := e.proximity.extract(h, item.Synonyms, year); v != "" {
				result.Items[item.Name][year] = v
			}
		}
	}
	result.Found = result.CountFound()

	if !ShouldEscalate(result.Found, len(e.catalog), len(years), e.threshold) {
		return result
	}
	if !e.escalator.Enabled() {
		log.Printf("extract.Engine: %s: pattern matching found %d/%d values, escalation disabled",
			source, result.Found, len(e.catalog)*len(years))
		return result
	}

	log.Printf("extract.Engine: %s: pattern matching found %d/%d values, trying fallback",
		source, result.Found, len(e.catalog)*len(years))
	out := e.escalator.Escalate(ctx, source, text, e.catalog)
	if out == nil {
		return result
	}

	Merge(result, out.Result)
	result.Escalated = true
	result.ModelUsed = out.ModelUsed
	return result
}
