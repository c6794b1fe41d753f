// Package server initializes and runs the invoice pipeline server.
// It wires configuration, storage, AWS clients and the HTTP surface, and
// handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"invoice-pipeline/internal/logging"
	"invoice-pipeline/internal/server/auditlog"
	"invoice-pipeline/internal/server/awsx"
	"invoice-pipeline/internal/server/config"
	"invoice-pipeline/internal/server/httpapi"
	"invoice-pipeline/internal/server/ingest"
	"invoice-pipeline/internal/server/ocr"
	"invoice-pipeline/internal/server/parsing"
	"invoice-pipeline/internal/server/repositories/repomanager"
	"invoice-pipeline/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	router *gin.Engine
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	awsCfg, err := awsx.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	repo := rm.Invoices(db)

	pipeline := ingest.NewService(
		ingest.NewValidator(cfg.InvoiceBucket, cfg.AllowedFormats, cfg.MaxFileSize),
		awsx.NewMetadataFetcher(awsx.NewS3Client(awsCfg, cfg)),
		ocr.NewExtractor(awsx.NewTextractClient(awsCfg), logger),
		parsing.New(nil),
		repo,
		logger,
		ingest.Options{
			TextractEnabled:     cfg.TextractEnabled,
			TextractTimeout:     cfg.TextractTimeout,
			ConfidenceThreshold: cfg.TextractConfidenceThreshold,
		},
		nil,
	)

	invoiceService := services.NewInvoiceService(repo, auditlog.NewSlogWriter(logger), logger, nil)

	router := httpapi.NewRouter(httpapi.NewHandler(pipeline, invoiceService, logger), logger)

	return &App{config: cfg, logger: logger, db: db, router: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{Addr: app.config.HTTPAddr, Handler: app.router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, err.Error())
		}
	}()

	app.logger.Info(ctx, "HTTP server listening", "addr", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
