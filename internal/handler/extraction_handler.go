package handler

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"finextract/internal/csvexport"
	"finextract/internal/domain"
	"finextract/internal/export"
	"finextract/internal/service"
)

const (
	formFieldFiles  = "files"
	headerRunID     = "X-Extraction-Run-ID"
	defaultFileBase = "financial_extraction"
)

// ExtractionConfig holds settings for the extraction endpoints.
type ExtractionConfig struct {
	MaxUploadBytes int64
	FileName       string
	Export         export.Options
}

// ExtractionHandler handles extraction endpoints.
type ExtractionHandler struct {
	svc service.ExtractionService
	cfg ExtractionConfig
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(svc service.ExtractionService, cfg ExtractionConfig) *ExtractionHandler {
	if cfg.FileName == "" {
		cfg.FileName = defaultFileBase
	}
	return &ExtractionHandler{svc: svc, cfg: cfg}
}

// Create handles POST /api/v1/extractions
// @Summary Extract line items from uploaded documents
// @Description Upload one or more PDF or text files (field "files"). The report is returned
// @Description as an xlsx attachment unless ?format=csv or ?format=json is given.
// @Tags extractions
// @Accept multipart/form-data
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv,json
// @Param files formData file true "Documents to extract"
// @Param format query string false "xlsx (default), csv or json"
// @Router /extractions [post]
func (h *ExtractionHandler) Create(c *gin.Context) {
	format, err := domain.ParseExportFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILES", "multipart field \"files\" is required")
		return
	}
	headers := form.File[formFieldFiles]
	if len(headers) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_FILES", "multipart field \"files\" is required")
		return
	}

	files := make([]domain.SourceFile, 0, len(headers))
	for _, fh := range headers {
		file, err := h.readUpload(fh)
		if err != nil {
			HandleError(c, err)
			return
		}
		files = append(files, file)
	}

	run, err := h.svc.ExtractUploads(c.Request.Context(), files)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header(headerRunID, run.ID.String())
	if format == domain.ExportFormatJSON {
		RespondCreated(c, run)
		return
	}
	h.sendReport(c, run.Report, format)
}

// List handles GET /api/v1/extractions
func (h *ExtractionHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	runs, total, err := h.svc.ListRuns(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/extractions/:id
func (h *ExtractionHandler) GetByID(c *gin.Context) {
	run, ok := h.loadRun(c)
	if !ok {
		return
	}
	RespondOK(c, run)
}

// Report handles GET /api/v1/extractions/:id/report
// @Summary Download the report of a stored extraction run
// @Tags extractions
// @Param id path string true "Run ID"
// @Param format query string false "xlsx (default), csv or json"
// @Router /extractions/{id}/report [get]
func (h *ExtractionHandler) Report(c *gin.Context) {
	format, err := domain.ParseExportFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}
	run, ok := h.loadRun(c)
	if !ok {
		return
	}
	if run.Report == nil {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "run has no report")
		return
	}
	h.sendReport(c, run.Report, format)
}

func (h *ExtractionHandler) loadRun(c *gin.Context) (*domain.ExtractionRun, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction run ID")
		return nil, false
	}
	run, err := h.svc.GetRun(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return run, true
}

func (h *ExtractionHandler) readUpload(fh *multipart.FileHeader) (domain.SourceFile, error) {
	if h.cfg.MaxUploadBytes > 0 && fh.Size > h.cfg.MaxUploadBytes {
		return domain.SourceFile{}, fmt.Errorf("%w: %s", domain.ErrFileTooLarge, fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}
	return domain.SourceFile{Name: fh.Filename, Data: data}, nil
}

func (h *ExtractionHandler) sendReport(c *gin.Context, r *domain.Report, format domain.ExportFormat) {
	var buf bytes.Buffer
	if err := export.Write(&buf, format, r, h.cfg.Export); err != nil {
		HandleError(c, err)
		return
	}
	name := export.FileName(csvexport.SanitizeFilename(h.cfg.FileName), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}
