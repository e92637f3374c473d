// Package server initializes and runs the application: it opens the
// database, applies migrations, wires the services to the HTTP API and
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
	"syscall"
	"time"

	"github.com/abdul977/voicenotes/internal/config"
	"github.com/abdul977/voicenotes/internal/httpapi"
	"github.com/abdul977/voicenotes/internal/logging"
	"github.com/abdul977/voicenotes/internal/repositories/repomanager"
	"github.com/abdul977/voicenotes/internal/services"
	"github.com/abdul977/voicenotes/internal/transcribe"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	// Transcription is optional; without an API key the endpoint reports
	// it as not configured.
	var transcriber services.Transcriber
	if cfg.OpenAIKey != "" {
		transcriber = transcribe.NewService(cfg.OpenAIKey, cfg.TranscriptionModel)
	}

	noteService := services.NewNoteService(db, repos, logger)
	entryService := services.NewEntryService(db, repos, cfg, transcriber, logger)
	sharingService := services.NewSharingService(db, repos, cfg, logger)

	api := httpapi.NewServer(noteService, entryService, sharingService, []byte(cfg.JWTSecret), logger)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		server: &http.Server{
			Addr:    cfg.EndpointAddr,
			Handler: api.Router(),
		},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "server failed", "error", err.Error())
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
