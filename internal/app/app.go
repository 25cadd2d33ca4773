package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/formrelay/internal/config"
	"github.com/formrelay/internal/email"
	"github.com/formrelay/internal/upload"
)

type App struct {
	config *config.Config
	logger *slog.Logger
	store  *upload.Store
	sender *email.Sender
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)
	store := upload.NewStore(cfg.UploadDir, logger)

	sender := email.NewSender(email.Config{
		Host:             cfg.SMTPHost,
		Port:             cfg.SMTPPort,
		User:             cfg.SMTPUser,
		Pass:             cfg.SMTPPass,
		FromEmail:        cfg.SenderEmail,
		FromName:         cfg.SenderName,
		ToEmail:          cfg.RecipientEmail,
		ToName:           cfg.RecipientName,
		Timeout:          cfg.SendTimeout,
		PGPPublicKeyPath: cfg.PGPPublicKeyPath,
	}, logger)

	if cfg.PGPPublicKeyPath != "" {
		if err := sender.EncryptionReady(); err != nil {
			return nil, fmt.Errorf("pgp configuration: %w", err)
		}
	}

	return &App{
		config: cfg,
		logger: logger,
		store:  store,
		sender: sender,
	}, nil
}

func (app *App) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", app.config.Port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	g.Go(func() error {
		app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		app.store.Janitor(gctx, app.config.JanitorEvery, app.config.JanitorMaxAge)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		app.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	app.logger.Info("stopped server")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}
