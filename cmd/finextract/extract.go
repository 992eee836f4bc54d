package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"finextract/internal/csvexport"
	"finextract/internal/domain"
	"finextract/internal/export"
	"finextract/internal/extract"
	"finextract/internal/parser"
	_ "finextract/internal/parser/claude"
	_ "finextract/internal/parser/gemini"
	_ "finextract/internal/parser/openai"
	"finextract/internal/port"
	"finextract/internal/repository/postgres"
	"finextract/internal/service"
	s3storage "finextract/internal/storage/s3"
	"finextract/internal/textsource"
)

var extractCmd = &cobra.Command{
	Use:   "extract [flags] <file|s3://bucket/key>...",
	Short: "Extract line items from the given documents and write the report",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

var (
	extractOut          string
	extractFormat       string
	extractUpload       string
	extractConcurrency  int
	extractThreshold    float64
	extractNoEscalation bool
	extractPersist      bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", `Output file ("-" for stdout, default financial_extraction_<date>.<format>)`)
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "", "Report format: xlsx, csv or json (default from FINX_EXPORT_FORMAT)")
	extractCmd.Flags().StringVar(&extractUpload, "upload", "", "Also upload the report to s3://bucket/key")
	extractCmd.Flags().IntVar(&extractConcurrency, "concurrency", 0, "Documents processed in parallel (overrides config)")
	extractCmd.Flags().Float64Var(&extractThreshold, "threshold", 0, "Coverage below which the LLM fallback runs (overrides config)")
	extractCmd.Flags().BoolVar(&extractNoEscalation, "no-escalation", false, "Never call an LLM provider")
	extractCmd.Flags().BoolVar(&extractPersist, "persist", false, "Store the run in PostgreSQL")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	formatName := extractFormat
	if formatName == "" {
		formatName = cfg.Export.Format
	}
	format, err := domain.ParseExportFormat(formatName)
	if err != nil {
		return fmt.Errorf("%w: %q", err, formatName)
	}

	var docParser port.DocumentParser
	if !extractNoEscalation {
		docParser, err = parser.NewFromConfig(&cfg.Parser)
		if err != nil {
			return fmt.Errorf("failed to initialize parser: %w", err)
		}
	}

	var storage port.ObjectStorage
	if needsObjectStorage(args, extractUpload) {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	var repo port.ExtractionRepository
	persist := extractPersist || cfg.Extraction.Persist
	if persist {
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		repo = postgres.NewExtractionRepo(db)
	}

	opts := extract.Options{
		Window:            cfg.Extraction.Window,
		MaxYears:          cfg.Extraction.MaxYears,
		ExcerptLength:     cfg.Extraction.ExcerptLength,
		CoverageThreshold: cfg.Extraction.CoverageThreshold,
		EscalationTimeout: cfg.Extraction.EscalationTimeout,
	}
	if extractThreshold > 0 {
		opts.CoverageThreshold = extractThreshold
	}
	concurrency := cfg.Extraction.Concurrency
	if extractConcurrency > 0 {
		concurrency = extractConcurrency
	}

	svc := service.NewExtractionService(
		extract.NewEngine(domain.IncomeStatementCatalog(), docParser, opts),
		textsource.NewLoader(storage, cfg.Server.MaxUploadMB<<20),
		storage,
		repo,
		service.ExtractionConfig{Concurrency: concurrency, Persist: persist},
	)

	run, err := svc.ExtractFiles(ctx, args)
	if err != nil {
		return err
	}
	printSummary(cmd.ErrOrStderr(), run)

	exportOpts := export.Options{SheetName: cfg.Export.SheetName}
	if err := writeReport(cmd.OutOrStdout(), run.Report, format, exportOpts); err != nil {
		return err
	}

	if extractUpload != "" {
		out, err := svc.Publish(ctx, &service.PublishInput{
			Report: run.Report,
			Format: format,
			URI:    extractUpload,
			Export: exportOpts,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "uploaded report to %s\n", out.Location)
	}
	return nil
}

func needsObjectStorage(refs []string, upload string) bool {
	if upload != "" {
		return true
	}
	for _, ref := range refs {
		if s3storage.IsURI(ref) {
			return true
		}
	}
	return false
}

func writeReport(stdout io.Writer, r *domain.Report, format domain.ExportFormat, opts export.Options) error {
	if extractOut == "-" {
		return export.Write(stdout, format, r, opts)
	}

	path := extractOut
	if path == "" {
		path = csvexport.BuildFilename(cfg.Export.FileName, string(format))
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, r, opts); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Printf("report written to %s", path)
	return nil
}

func printSummary(w io.Writer, run *domain.ExtractionRun) {
	for i := range run.Documents {
		doc := &run.Documents[i]
		line := fmt.Sprintf("%s: %d values, currency %s, years %v", doc.Source, doc.Found, doc.Currency, doc.Years)
		if doc.Escalated {
			line += fmt.Sprintf(" (completed by %s)", doc.ModelUsed)
		}
		fmt.Fprintln(w, line)
	}
	for _, s := range run.Skipped {
		fmt.Fprintf(w, "%s: skipped (%s)\n", s.Source, s.Reason)
	}
}
