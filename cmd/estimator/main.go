package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"estimate-backend/internal/config"
	"estimate-backend/internal/storage/mysql"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "apply schema migrations and exit")
	flag.Parse()

	cfg := config.MustConfig()

	log := setupLogger(cfg.Env, cfg.ErrorLogPath)

	storage, err := mysql.New(cfg.DB)
	if err != nil {
		log.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer storage.Close()

	if cfg.MigrateOnStart || *migrateOnly {
		if err := storage.Migrate(); err != nil {
			log.Error("failed to migrate", slog.Any("err", err))
			os.Exit(1)
		}
		log.Info("schema is up to date")
	}
	if *migrateOnly {
		return
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(cfg, log, newServices(storage)),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: 3 * cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("server stopped")
}

// dualHandler writes everything to stdout and duplicates errors into a file.
type dualHandler struct {
	coreHandler  slog.Handler
	errorHandler slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.coreHandler.Enabled(ctx, lvl) || h.errorHandler.Enabled(ctx, lvl)
}

func (h *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h.coreHandler.Enabled(ctx, r.Level) {
		if err = h.coreHandler.Handle(ctx, r); err != nil {
			return err
		}
	}

	// a broken error file must not fail the request log
	if r.Level >= slog.LevelError && h.errorHandler.Enabled(ctx, r.Level) {
		_ = h.errorHandler.Handle(ctx, r.Clone())
	}
	return err
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithAttrs(attrs),
		errorHandler: h.errorHandler.WithAttrs(attrs),
	}
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithGroup(name),
		errorHandler: h.errorHandler.WithGroup(name),
	}
}

func setupLogger(env, errorLogPath string) *slog.Logger {
	level := slog.LevelDebug
	if env == envProd {
		level = slog.LevelInfo
	}

	var coreHandler slog.Handler
	switch env {
	case envDev:
		coreHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		coreHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	if errorLogPath == "" {
		return slog.New(coreHandler)
	}
	errorFile, err := os.OpenFile(errorLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Warn("cannot open error log file", slog.String("path", errorLogPath), slog.Any("err", err))
		return slog.New(coreHandler)
	}

	return slog.New(&dualHandler{
		coreHandler:  coreHandler,
		errorHandler: slog.NewTextHandler(errorFile, &slog.HandlerOptions{Level: slog.LevelError}),
	})
}
