package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"finextract/internal/domain"
	"finextract/internal/port"
)

// extractionRunRow is the extraction_runs table layout. Documents, skipped sources and
// the assembled report are stored as JSONB.
type extractionRunRow struct {
	ID            uuid.UUID       `db:"id"`
	DocumentCount int             `db:"document_count"`
	Documents     json.RawMessage `db:"documents"`
	Skipped       json.RawMessage `db:"skipped"`
	Report        json.RawMessage `db:"report"`
	CreatedAt     time.Time       `db:"created_at"`
}

type extractionRepo struct {
	db *sqlx.DB
}

// NewExtractionRepo creates a new PostgreSQL-backed ExtractionRepository.
func NewExtractionRepo(db *sqlx.DB) port.ExtractionRepository {
	return &extractionRepo{db: db}
}

func (r *extractionRepo) Create(ctx context.Context, run *domain.ExtractionRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	row, err := toRow(run)
	if err != nil {
		return fmt.Errorf("extractionRepo.Create: %w", err)
	}
	_, err = r.db.NamedExecContext(ctx,
		`INSERT INTO extraction_runs (id, document_count, documents, skipped, report, created_at)
		 VALUES (:id, :document_count, :documents, :skipped, :report, :created_at)`, row)
	if err != nil {
		return fmt.Errorf("extractionRepo.Create: %w", err)
	}
	return nil
}

func (r *extractionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error) {
	var row extractionRunRow
	err := r.db.GetContext(ctx, &row,
		"SELECT id, document_count, documents, skipped, report, created_at FROM extraction_runs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("extractionRepo.GetByID: %w", err)
	}
	return fromRow(&row)
}

func (r *extractionRepo) List(ctx context.Context, offset, limit int) ([]domain.ExtractionRun, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM extraction_runs"); err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.List count: %w", err)
	}

	var rows []extractionRunRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, document_count, documents, skipped, report, created_at FROM extraction_runs
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.List: %w", err)
	}

	runs := make([]domain.ExtractionRun, 0, len(rows))
	for i := range rows {
		run, err := fromRow(&rows[i])
		if err != nil {
			return nil, 0, fmt.Errorf("extractionRepo.List: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, total, nil
}

func toRow(run *domain.ExtractionRun) (*extractionRunRow, error) {
	docs := run.Documents
	if docs == nil {
		docs = []domain.DocumentExtraction{}
	}
	documents, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("encoding documents: %w", err)
	}
	skipped := run.Skipped
	if skipped == nil {
		skipped = []domain.SkippedDocument{}
	}
	skippedJSON, err := json.Marshal(skipped)
	if err != nil {
		return nil, fmt.Errorf("encoding skipped documents: %w", err)
	}
	var report json.RawMessage
	if run.Report != nil {
		if report, err = json.Marshal(run.Report); err != nil {
			return nil, fmt.Errorf("encoding report: %w", err)
		}
	}
	return &extractionRunRow{
		ID:            run.ID,
		DocumentCount: len(docs),
		Documents:     documents,
		Skipped:       skippedJSON,
		Report:        report,
		CreatedAt:     run.CreatedAt,
	}, nil
}

func fromRow(row *extractionRunRow) (*domain.ExtractionRun, error) {
	run := &domain.ExtractionRun{ID: row.ID, CreatedAt: row.CreatedAt}
	if len(row.Documents) > 0 {
		if err := json.Unmarshal(row.Documents, &run.Documents); err != nil {
			return nil, fmt.Errorf("decoding documents: %w", err)
		}
	}
	if len(row.Skipped) > 0 {
		if err := json.Unmarshal(row.Skipped, &run.Skipped); err != nil {
			return nil, fmt.Errorf("decoding skipped documents: %w", err)
		}
	}
	if len(row.Report) > 0 && string(row.Report) != "null" {
		run.Report = &domain.Report{}
		if err := json.Unmarshal(row.Report, run.Report); err != nil {
			return nil, fmt.Errorf("decoding report: %w", err)
		}
	}
	return run, nil
}
