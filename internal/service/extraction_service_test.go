package service_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finextract/internal/domain"
	"finextract/internal/extract"
	"finextract/internal/port"
	"finextract/internal/report"
	"finextract/internal/service"
	"finextract/internal/textsource"
	"finextract/mocks"
)

func newService(storage port.ObjectStorage, repo port.ExtractionRepository, cfg service.ExtractionConfig) service.ExtractionService {
	engine := extract.NewEngine(domain.IncomeStatementCatalog(), nil, extract.Options{})
	return service.NewExtractionService(engine, textsource.NewLoader(storage, 0), storage, repo, cfg)
}

func TestExtractUploads_PreservesOrderAndSkipsUnusable(t *testing.T) {
	svc := newService(nil, nil, service.ExtractionConfig{Concurrency: 2})

	run, err := svc.ExtractUploads(context.Background(), []domain.SourceFile{
		{Name: "b.txt", Data: []byte("Total Revenue FY 24 812")},
		{Name: "slides.pptx", Data: []byte("binary")},
		{Name: "a.txt", Data: []byte("Total Revenue FY 25 1,234.50 FY 24 980.00")},
		{Name: "blank.txt", Data: []byte("   ")},
	})
	require.NoError(t, err)

	require.Len(t, run.Documents, 2)
	assert.Equal(t, "b.txt", run.Documents[0].Source)
	assert.Equal(t, "a.txt", run.Documents[1].Source)
	assert.Equal(t, "812", run.Documents[0].Value("Total Revenue", "FY 24"))

	require.Len(t, run.Skipped, 2)
	assert.Equal(t, "slides.pptx", run.Skipped[0].Source)
	assert.Equal(t, "blank.txt", run.Skipped[1].Source)

	assert.NotEqual(t, uuid.Nil, run.ID)
	require.NotNil(t, run.Report)
	assert.Equal(t, []string{report.ColumnLineItem, "FY 25", "FY 24", report.ColumnCurrency, report.ColumnNotes}, run.Report.Columns)
	assert.Equal(t, "=== b.txt ===", run.Report.Rows[0].Label)
}

func TestExtractUploads_AllUnusableYieldsErrorTable(t *testing.T) {
	svc := newService(nil, nil, service.ExtractionConfig{})

	run, err := svc.ExtractUploads(context.Background(), []domain.SourceFile{
		{Name: "empty.txt", Data: nil},
	})
	require.NoError(t, err)
	assert.Empty(t, run.Documents)
	assert.Equal(t, report.ErrorReport(), run.Report)
}

func TestExtractUploads_NoInput(t *testing.T) {
	svc := newService(nil, nil, service.ExtractionConfig{})
	_, err := svc.ExtractUploads(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNoDocuments)

	_, err = svc.ExtractFiles(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
}

func TestExtractUploads_CanceledContext(t *testing.T) {
	svc := newService(nil, nil, service.ExtractionConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ExtractUploads(ctx, []domain.SourceFile{{Name: "a.txt", Data: []byte("PAT FY 25 10")}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractFiles_LocalAndObjectStorage(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "local.txt")
	require.NoError(t, os.WriteFile(local, []byte("PAT FY 25 120.00"), 0o600))

	storage := new(mocks.MockObjectStorage)
	storage.On("Download", mock.Anything, "filings", "remote.txt").Return([]byte("PAT FY 24 99.10"), nil)

	svc := newService(storage, nil, service.ExtractionConfig{})
	run, err := svc.ExtractFiles(context.Background(), []string{local, "s3://filings/remote.txt", filepath.Join(dir, "missing.txt")})
	require.NoError(t, err)

	require.Len(t, run.Documents, 2)
	assert.Equal(t, "local.txt", run.Documents[0].Source)
	assert.Equal(t, "120.00", run.Documents[0].Value("PAT", "FY 25"))
	assert.Equal(t, "remote.txt", run.Documents[1].Source)
	assert.Equal(t, "99.10", run.Documents[1].Value("PAT", "FY 24"))
	require.Len(t, run.Skipped, 1)
	assert.Equal(t, filepath.Join(dir, "missing.txt"), run.Skipped[0].Source)
	storage.AssertExpectations(t)
}

func TestExtract_PersistsWhenEnabled(t *testing.T) {
	repo := new(mocks.MockExtractionRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ExtractionRun")).Return(nil)

	svc := newService(nil, repo, service.ExtractionConfig{Persist: true})
	run, err := svc.ExtractUploads(context.Background(), []domain.SourceFile{{Name: "a.txt", Data: []byte("PAT FY 25 10")}})
	require.NoError(t, err)
	require.NotNil(t, run)
	repo.AssertExpectations(t)
}

func TestExtract_PersistFailureStillReturnsRun(t *testing.T) {
	repo := new(mocks.MockExtractionRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	svc := newService(nil, repo, service.ExtractionConfig{Persist: true})
	run, err := svc.ExtractUploads(context.Background(), []domain.SourceFile{{Name: "a.txt", Data: []byte("PAT FY 25 10")}})
	require.NoError(t, err)
	assert.Len(t, run.Documents, 1)
}

func TestExtract_NotPersistedWhenDisabled(t *testing.T) {
	repo := new(mocks.MockExtractionRepo)
	svc := newService(nil, repo, service.ExtractionConfig{Persist: false})

	_, err := svc.ExtractUploads(context.Background(), []domain.SourceFile{{Name: "a.txt", Data: []byte("PAT FY 25 10")}})
	require.NoError(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetRun(t *testing.T) {
	id := uuid.New()
	repo := new(mocks.MockExtractionRepo)
	repo.On("GetByID", mock.Anything, id).Return(&domain.ExtractionRun{ID: id}, nil)

	run, err := newService(nil, repo, service.ExtractionConfig{}).GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)

	_, err = newService(nil, nil, service.ExtractionConfig{}).GetRun(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrPersistenceDisabled)
}

func TestListRuns(t *testing.T) {
	repo := new(mocks.MockExtractionRepo)
	repo.On("List", mock.Anything, 0, 20).Return([]domain.ExtractionRun{{ID: uuid.New()}}, 1, nil)

	runs, total, err := newService(nil, repo, service.ExtractionConfig{}).ListRuns(context.Background(), 0, 20)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, 1, total)

	_, _, err = newService(nil, nil, service.ExtractionConfig{}).ListRuns(context.Background(), 0, 20)
	assert.ErrorIs(t, err, domain.ErrPersistenceDisabled)
}

func TestPublish_UploadsRenderedReport(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	var body []byte
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "reports" && in.Key == "2025/q4.csv" && in.ContentType == "text/csv; charset=utf-8"
	})).Run(func(args mock.Arguments) {
		body, _ = io.ReadAll(args.Get(1).(port.UploadInput).Body)
	}).Return(&port.UploadOutput{Location: "https://reports.s3/2025/q4.csv"}, nil)

	svc := newService(storage, nil, service.ExtractionConfig{})
	out, err := svc.Publish(context.Background(), &service.PublishInput{
		Report: report.ErrorReport(),
		Format: domain.ExportFormatCSV,
		URI:    "s3://reports/2025/q4.csv",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://reports.s3/2025/q4.csv", out.Location)
	assert.Contains(t, string(body), report.ErrorMessage)
	storage.AssertExpectations(t)
}

func TestPublish_Errors(t *testing.T) {
	_, err := newService(nil, nil, service.ExtractionConfig{}).Publish(context.Background(), &service.PublishInput{
		Report: report.ErrorReport(), Format: domain.ExportFormatJSON, URI: "s3://reports/r.json",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSource)

	storage := new(mocks.MockObjectStorage)
	svc := newService(storage, nil, service.ExtractionConfig{})

	_, err = svc.Publish(context.Background(), &service.PublishInput{
		Report: report.ErrorReport(), Format: domain.ExportFormatJSON, URI: "/tmp/r.json",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSource)

	_, err = svc.Publish(context.Background(), &service.PublishInput{
		Report: report.ErrorReport(), Format: "pdf", URI: "s3://reports/r.pdf",
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("denied"))
	_, err = svc.Publish(context.Background(), &service.PublishInput{
		Report: report.ErrorReport(), Format: domain.ExportFormatJSON, URI: "s3://reports/r.json",
	})
	assert.ErrorContains(t, err, "denied")
}
