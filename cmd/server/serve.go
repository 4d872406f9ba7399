package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movielog/internal/config"
	httpserver "github.com/Clark-Hu/movielog/internal/http"
	"github.com/Clark-Hu/movielog/internal/logging"
	"github.com/Clark-Hu/movielog/internal/service"
	"github.com/Clark-Hu/movielog/internal/tmdb"
)

func makeServeCMD() cli.Command {
	return cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves the HTTP API",
		Action:  serve,
	}
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config error")
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	be, err := openBackend(dbCtx, cfg, logger)
	if err != nil {
		logger.Error("open storage", zap.String("backend", cfg.StorageBackend), zap.Error(err))
		return err
	}
	defer be.close()

	if err := be.prepare(dbCtx); err != nil {
		logger.Error("prepare storage", zap.Error(err))
		return err
	}

	tmdbClient, err := tmdb.NewHTTPClient(tmdb.Options{
		BaseURL:  cfg.TMDBURL,
		Token:    cfg.TMDBToken,
		Language: cfg.TMDBLanguage,
		Timeout:  time.Duration(cfg.TMDBTimeoutSecs) * time.Second,
		Logger:   logger,
	})
	if err != nil {
		return errors.Wrap(err, "init tmdb client")
	}

	movies := service.NewMovies(be.movies, tmdbClient, logger)
	server := httpserver.New(cfg, movies, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	var serveErr error
	select {
	case serveErr = <-serverErrCh:
		if serveErr != nil {
			logger.Error("server error", zap.Error(serveErr))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
	return serveErr
}
