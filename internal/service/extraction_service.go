package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"finextract/internal/domain"
	"finextract/internal/export"
	"finextract/internal/extract"
	"finextract/internal/port"
	"finextract/internal/report"
	s3storage "finextract/internal/storage/s3"
	"finextract/internal/textsource"
)

const defaultConcurrency = 4

// ExtractionConfig holds settings for the extraction service.
type ExtractionConfig struct {
	Concurrency int
	Persist     bool
}

// PublishInput describes a rendered report upload to object storage.
type PublishInput struct {
	Report *domain.Report
	Format domain.ExportFormat
	URI    string
	Export export.Options
}

// ExtractionService defines the extraction contract.
type ExtractionService interface {
	ExtractFiles(ctx context.Context, refs []string) (*domain.ExtractionRun, error)
	ExtractUploads(ctx context.Context, files []domain.SourceFile) (*domain.ExtractionRun, error)
	GetRun(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error)
	ListRuns(ctx context.Context, offset, limit int) ([]domain.ExtractionRun, int, error)
	Publish(ctx context.Context, input *PublishInput) (*port.UploadOutput, error)
}

type extractionService struct {
	engine    *extract.Engine
	assembler *report.Assembler
	loader    *textsource.Loader
	storage   port.ObjectStorage
	repo      port.ExtractionRepository
	cfg       ExtractionConfig
}

// NewExtractionService creates a new ExtractionService implementation.
// storage and repo are optional: without storage s3:// sources and Publish fail, and
// without repo runs are not persisted.
func NewExtractionService(
	engine *extract.Engine,
	loader *textsource.Loader,
	storage port.ObjectStorage,
	repo port.ExtractionRepository,
	cfg ExtractionConfig,
) ExtractionService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &extractionService{
		engine:    engine,
		assembler: report.NewAssembler(engine.Catalog()),
		loader:    loader,
		storage:   storage,
		repo:      repo,
		cfg:       cfg,
	}
}

// ExtractFiles loads each reference (local path or s3:// URI) and extracts it. Loaded
// documents are labelled by file name; references that fail to load keep the full reference.
// Sources that cannot be loaded are skipped, not fatal.
func (s *extractionService) ExtractFiles(ctx context.Context, refs []string) (*domain.ExtractionRun, error) {
	if len(refs) == 0 {
		return nil, domain.ErrNoDocuments
	}
	return s.run(ctx, len(refs), func(ctx context.Context, i int) (string, string, error) {
		file, err := s.loader.Load(ctx, refs[i])
		if err != nil {
			return refs[i], "", err
		}
		text, err := textsource.Text(file)
		return file.Name, text, err
	})
}

// ExtractUploads extracts explicitly supplied files.
func (s *extractionService) ExtractUploads(ctx context.Context, files []domain.SourceFile) (*domain.ExtractionRun, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoDocuments
	}
	return s.run(ctx, len(files), func(_ context.Context, i int) (string, string, error) {
		text, err := textsource.Text(files[i])
		return files[i].Name, text, err
	})
}

// readFunc returns the source identifier and text of the i-th input.
type readFunc func(ctx context.Context, i int) (source, text string, err error)

type slot struct {
	doc     *domain.DocumentExtraction
	skipped *domain.SkippedDocument
}

func (s *extractionService) run(ctx context.Context, n int, read readFunc) (*domain.ExtractionRun, error) {
	slots := make([]slot, n)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			source, text, err := read(gCtx, i)
			if err != nil {
				log.Printf("extractionService: skipping %s: %v", source, err)
				slots[i].skipped = &domain.SkippedDocument{Source: source, Reason: err.Error()}
				return nil
			}
			slots[i].doc = s.engine.Extract(gCtx, source, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extracting documents: %w", err)
	}

	run := &domain.ExtractionRun{
		ID:        uuid.New(),
		Documents: make([]domain.DocumentExtraction, 0, n),
		CreatedAt: time.Now().UTC(),
	}
	for _, sl := range slots {
		switch {
		case sl.doc != nil:
			run.Documents = append(run.Documents, *sl.doc)
		case sl.skipped != nil:
			run.Skipped = append(run.Skipped, *sl.skipped)
		}
	}
	run.Report = s.assembler.Assemble(run.Documents)

	log.Printf("extractionService: run %s extracted %d documents, skipped %d",
		run.ID, len(run.Documents), len(run.Skipped))

	if s.repo != nil && s.cfg.Persist {
		if err := s.repo.Create(ctx, run); err != nil {
			// the report is still returned; persistence is best effort
			log.Printf("extractionService: failed to persist run %s: %v", run.ID, err)
		}
	}
	return run, nil
}

func (s *extractionService) GetRun(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error) {
	if s.repo == nil {
		return nil, domain.ErrPersistenceDisabled
	}
	return s.repo.GetByID(ctx, id)
}

func (s *extractionService) ListRuns(ctx context.Context, offset, limit int) ([]domain.ExtractionRun, int, error) {
	if s.repo == nil {
		return nil, 0, domain.ErrPersistenceDisabled
	}
	return s.repo.List(ctx, offset, limit)
}

// Publish renders a report and uploads it to the s3:// URI in input.
func (s *extractionService) Publish(ctx context.Context, input *PublishInput) (*port.UploadOutput, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", domain.ErrInvalidSource)
	}
	if input.Report == nil {
		return nil, errors.New("publish: report is required")
	}
	bucket, key, err := s3storage.ParseURI(input.URI)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, input.Format, input.Report, input.Export); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}

	out, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      bucket,
		Key:         key,
		Body:        &buf,
		ContentType: export.ContentType(input.Format),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading report: %w", err)
	}
	log.Printf("extractionService: published %s report to %s", input.Format, input.URI)
	return out, nil
}
