package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/invoiceportal/backend/internal/application/invoicing"
	"github.com/invoiceportal/backend/internal/application/onboarding"
	"github.com/invoiceportal/backend/internal/application/payroll"
	"github.com/invoiceportal/backend/internal/infrastructure/auth"
	"github.com/invoiceportal/backend/internal/infrastructure/config"
	"github.com/invoiceportal/backend/internal/infrastructure/logger"
	"github.com/invoiceportal/backend/internal/infrastructure/mail"
	"github.com/invoiceportal/backend/internal/infrastructure/persistence"
	"github.com/invoiceportal/backend/internal/infrastructure/printing"
	"github.com/invoiceportal/backend/internal/infrastructure/storage"
	"github.com/invoiceportal/backend/internal/interfaces/http/handler"
	"github.com/invoiceportal/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting invoice portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	consultantRepo := persistence.NewGormConsultantRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	pdfRenderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Printing.Timeout,
		RemoteURL:      cfg.Printing.ChromeURL,
		NoSandbox:      cfg.App.Env == "production",
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Failed to close PDF renderer", zap.Error(err))
		}
	}()

	documentStore, err := newDocumentStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize document store", zap.Error(err))
	}

	profileService := onboarding.NewService(consultantRepo, log)
	importService := payroll.NewImportService(consultantRepo, invoiceRepo, log)
	invoiceService := invoicing.NewService(
		invoiceRepo,
		consultantRepo,
		printing.NewInvoiceDocumentRenderer(pdfRenderer),
		documentStore,
		mail.NewGmailSender(log),
		cfg.Mail.FinanceEmail,
		invoicing.WithKeyPrefix(cfg.Storage.KeyPrefix),
		invoicing.WithLogger(log),
	)

	engine := router.Setup(cfg, log, auth.NewVerifier(cfg.JWT), router.Handlers{
		System:  handler.NewSystemHandler(db),
		Profile: handler.NewProfileHandler(profileService),
		Payroll: handler.NewPayrollHandler(importService, profileService),
		Invoice: handler.NewInvoiceHandler(invoiceService, profileService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// newDocumentStore picks the S3 store when a bucket is configured, otherwise
// the in-memory store. The in-memory store loses archived PDFs on restart;
// the document endpoint re-renders on a missing copy, so this is acceptable
// for development.
func newDocumentStore(cfg *config.Config, log *zap.Logger) (invoicing.DocumentStore, error) {
	if cfg.Storage.Bucket == "" {
		log.Warn("No storage bucket configured, archiving invoice PDFs in memory")
		return storage.NewMemoryDocumentStore(), nil
	}
	return storage.NewS3DocumentStore(&cfg.Storage, storage.WithLogger(log))
}
