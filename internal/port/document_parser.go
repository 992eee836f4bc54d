package port

import (
	"context"

	"finextract/internal/domain"
)

// ParseInput carries the data sent to the external text-understanding service.
type ParseInput struct {
	Excerpt   string
	LineItems []string
}

// ParseOutput contains the structured result from an LLM parser.
type ParseOutput struct {
	Result     *domain.FallbackResult
	ModelUsed  string
	PromptUsed string
}

// DocumentParser abstracts LLM-based line-item extraction.
type DocumentParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
