package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movielog/db"
	"github.com/Clark-Hu/movielog/internal/config"
	"github.com/Clark-Hu/movielog/internal/repository"
	"github.com/Clark-Hu/movielog/internal/store"
)

// backend is an opened storage backend plus its schema setup and teardown.
type backend struct {
	movies  repository.MovieStore
	prepare func(ctx context.Context) error
	close   func()
}

func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backend, error) {
	connTimeout := time.Duration(cfg.DBConnTimeoutSecs) * time.Second

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		st, err := store.New(ctx, cfg.DBURL, store.Options{
			MaxConns:               int32(cfg.DBMaxConns),
			MinConns:               int32(cfg.DBMinConns),
			MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
			MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
			ConnTimeout:            connTimeout,
			StatementCacheCapacity: cfg.DBStatementCache,
			Logger:                 logger,
		})
		if err != nil {
			return nil, errors.Wrap(err, "connect postgres")
		}
		return &backend{
			movies: repository.NewPostgresMovies(st.Pool(), logger),
			prepare: func(ctx context.Context) error {
				return db.Apply(ctx, st.Pool())
			},
			close: func() {
				if stat := st.Stats(); stat != nil {
					logger.Info("pool stats",
						zap.Int64("acquired", stat.AcquireCount()),
						zap.Int32("total", stat.TotalConns()),
						zap.Int32("idle", stat.IdleConns()))
				}
				st.Close()
			},
		}, nil

	case config.BackendMongo:
		m, err := store.NewMongo(ctx, cfg.MongoURI, store.MongoOptions{
			Database:    cfg.MongoDatabase,
			ConnTimeout: connTimeout,
			Logger:      logger,
		})
		if err != nil {
			return nil, errors.Wrap(err, "connect mongo")
		}
		movies := repository.NewMongoMovies(m.Collection(cfg.MongoCollection), logger)
		return &backend{
			movies:  movies,
			prepare: movies.EnsureIndexes,
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				m.Close(closeCtx)
			},
		}, nil

	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
