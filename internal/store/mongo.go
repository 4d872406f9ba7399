package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

// MongoOptions controls the MongoDB client.
type MongoOptions struct {
	Database    string
	ConnTimeout time.Duration
	Logger      *zap.Logger
}

// Mongo owns a MongoDB client bound to one database.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
	opts   MongoOptions
}

// NewMongo connects to uri and verifies the primary is reachable.
func NewMongo(ctx context.Context, uri string, opts MongoOptions) (*Mongo, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("mongo")

	clientOpts := options.Client().ApplyURI(uri)
	if opts.ConnTimeout > 0 {
		clientOpts.SetConnectTimeout(opts.ConnTimeout).SetServerSelectionTimeout(opts.ConnTimeout)
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}

	m := &Mongo{client: client, db: client.Database(opts.Database), logger: logger, opts: opts}
	if err := m.HealthCheck(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}

	logger.Info("database connection established", zap.String("database", opts.Database))
	return m, nil
}

// Collection returns a handle on a collection of the configured database.
func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// HealthCheck pings the primary.
func (m *Mongo) HealthCheck(ctx context.Context) error {
	if m == nil || m.client == nil {
		return errors.New("mongo not initialized")
	}
	checkCtx := ctx
	if m.opts.ConnTimeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, m.opts.ConnTimeout)
		defer cancel()
	}
	return m.client.Ping(checkCtx, readpref.Primary())
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) {
	if m == nil || m.client == nil {
		return
	}
	m.logger.Info("disconnecting")
	if err := m.client.Disconnect(ctx); err != nil {
		m.logger.Warn("disconnect failed", zap.Error(err))
	}
}
