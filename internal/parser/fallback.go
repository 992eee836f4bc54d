package parser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"finextract/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

type chainEntry struct {
	name    string
	parser  port.DocumentParser
	circuit *circuitState
}

// FallbackParser asks providers in order until one answers. Each provider is called at
// most once per Parse. A provider that reported a rate limit is skipped until its
// Retry-After has passed. It implements port.DocumentParser.
type FallbackParser struct {
	chain []chainEntry
}

// NewFallbackParser creates a FallbackParser from an ordered list of parsers and their names.
func NewFallbackParser(parsers []port.DocumentParser, names []string) *FallbackParser {
	chain := make([]chainEntry, len(parsers))
	for i, p := range parsers {
		name := fmt.Sprintf("provider-%d", i)
		if i < len(names) {
			name = names[i]
		}
		chain[i] = chainEntry{name: name, parser: p, circuit: &circuitState{}}
	}
	return &FallbackParser{chain: chain}
}

func (f *FallbackParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for _, e := range f.chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if resetAt, open := e.circuit.isOpenWithReset(now); open {
			log.Printf("parser.FallbackParser: skipping %s (circuit open until %s)", e.name, resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := e.parser.Parse(ctx, input)
		if err == nil {
			return out, nil
		}

		log.Printf("parser.FallbackParser: %s failed: %v", e.name, err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			e.circuit.open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
