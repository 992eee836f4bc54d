package port

import (
	"context"

	"github.com/google/uuid"

	"finextract/internal/domain"
)

// ExtractionRepository persists extraction runs.
type ExtractionRepository interface {
	Create(ctx context.Context, run *domain.ExtractionRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error)
	List(ctx context.Context, offset, limit int) ([]domain.ExtractionRun, int, error)
}
