package extract

import (
	"context"
	"log"
	"time"
	"unicode/utf8"

	"finextract/internal/domain"
	"finextract/internal/port"
)

const (
	// DefaultCoverageThreshold is the share of found slots below which a document escalates.
	DefaultCoverageThreshold = 0.2
	// DefaultExcerptLength is the number of characters of document text sent to the service.
	DefaultExcerptLength = 3000
	// DefaultEscalationTimeout bounds a single call to the service.
	DefaultEscalationTimeout = 60 * time.Second
)

// Escalator delegates extraction of the full catalog to an external text-understanding
// service. A nil parser disables escalation. Failures are logged and absorbed.
type Escalator struct {
	parser     port.DocumentParser
	excerptLen int
	timeout    time.Duration
}

// NewEscalator creates an Escalator around parser. Zero values select the defaults.
func NewEscalator(parser port.DocumentParser, excerptLen int, timeout time.Duration) *Escalator {
	if excerptLen <= 0 {
		excerptLen = DefaultExcerptLength
	}
	if timeout <= 0 {
		timeout = DefaultEscalationTimeout
	}
	return &Escalator{parser: parser, excerptLen: excerptLen, timeout: timeout}
}

// Enabled reports whether a service is configured.
func (e *Escalator) Enabled() bool {
	return e != nil && e.parser != nil
}

// ShouldEscalate reports whether found values cover less than threshold of items x years slots.
func ShouldEscalate(found, items, years int, threshold float64) bool {
	return float64(found) < float64(items*years)*threshold
}

// Escalate asks the service for every catalog item. It returns nil when escalation is
// disabled, the call fails or times out, or the response cannot be decoded.
func (e *Escalator) Escalate(ctx context.Context, source, text string, catalog domain.Catalog) *port.ParseOutput {
	if !e.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, err := e.parser.Parse(ctx, port.ParseInput{
		Excerpt:   Excerpt(text, e.excerptLen),
		LineItems: catalog.Names(),
	})
	if err != nil {
		log.Printf("extract.Escalator: %s: fallback failed: %v", source, err)
		return nil
	}
	if out == nil || out.Result == nil {
		log.Printf("extract.Escalator: %s: fallback returned no structured data", source)
		return nil
	}
	return out
}

// Excerpt returns at most n leading characters of text.
func Excerpt(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}
