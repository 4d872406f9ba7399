package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movielog/internal/config"
	"github.com/Clark-Hu/movielog/internal/logging"
)

func makeMigrateCMD() cli.Command {
	return cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Creates the schema (Postgres) or indexes (MongoDB)",
		Action:  migrate,
	}
}

func migrate(c *cli.Context) error {
	cfg, err := config.LoadStorage()
	if err != nil {
		return errors.Wrap(err, "config error")
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	if err := be.prepare(ctx); err != nil {
		return errors.Wrap(err, "migrate")
	}
	logger.Info("storage ready", zap.String("backend", cfg.StorageBackend))
	return nil
}
