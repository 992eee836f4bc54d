package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"finextract/internal/config"
	"finextract/internal/domain"
	"finextract/internal/export"
	"finextract/internal/extract"
	"finextract/internal/handler"
	"finextract/internal/parser"
	_ "finextract/internal/parser/claude"
	_ "finextract/internal/parser/gemini"
	_ "finextract/internal/parser/openai"
	"finextract/internal/port"
	"finextract/internal/repository/postgres"
	"finextract/internal/router"
	"finextract/internal/service"
	"finextract/internal/textsource"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Log.Level == "debug" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	// Persistence is optional
	var db *sqlx.DB
	var repo port.ExtractionRepository
	if cfg.Extraction.Persist {
		db, err = postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		repo = postgres.NewExtractionRepo(db)
	}

	docParser, err := parser.NewFromConfig(&cfg.Parser)
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}
	if docParser == nil {
		log.Printf("no LLM provider configured, escalation disabled")
	}

	catalog := domain.IncomeStatementCatalog()
	engine := extract.NewEngine(catalog, docParser, extract.Options{
		Window:            cfg.Extraction.Window,
		MaxYears:          cfg.Extraction.MaxYears,
		ExcerptLength:     cfg.Extraction.ExcerptLength,
		CoverageThreshold: cfg.Extraction.CoverageThreshold,
		EscalationTimeout: cfg.Extraction.EscalationTimeout,
	})

	maxUpload := cfg.Server.MaxUploadMB << 20
	extractionSvc := service.NewExtractionService(
		engine,
		textsource.NewLoader(nil, maxUpload),
		nil,
		repo,
		service.ExtractionConfig{Concurrency: cfg.Extraction.Concurrency, Persist: cfg.Extraction.Persist},
	)

	extractionH := handler.NewExtractionHandler(extractionSvc, handler.ExtractionConfig{
		MaxUploadBytes: maxUpload,
		FileName:       cfg.Export.FileName,
		Export:         export.Options{SheetName: cfg.Export.SheetName},
	})
	healthH := handler.NewHealthHandler(db, handler.ServiceInfo{
		Name:        "finextract",
		Description: "Extracts income-statement line items per fiscal year from PDF and text documents",
		LineItems:   catalog.Names(),
		Formats:     []string{string(domain.ExportFormatXLSX), string(domain.ExportFormatCSV), string(domain.ExportFormatJSON)},
		Escalation:  docParser != nil,
		Persistence: repo != nil,
	})

	r := router.Setup(extractionH, healthH, router.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		// a request may carry several files
		MaxBodyBytes: maxUpload * 4,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Printf("Server stopped")
	return nil
}
