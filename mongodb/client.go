package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/v2/mongo/otelmongo"

	"github.com/pilab-dev/shadow-identity/log"
)

// Client owns a MongoDB connection and the database the identity collections live in.
// It is built once by Connect and handed to whoever needs it.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	logger log.Logger
}

// ClientConfig holds the connection settings for Connect.
type ClientConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	Logger         log.Logger
}

// Connect dials MongoDB, instruments the client with OpenTelemetry and pings the primary.
func Connect(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, errors.New("mongodb: URI and database name must be provided")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	logger.Info(ctx, "Initializing MongoDB client", log.Fields{"database": cfg.Database})
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetMonitor(otelmongo.NewMonitor())

	client, err := mongo.Connect(opts)
	if err != nil {
		logger.Error(ctx, "Failed to connect to MongoDB", err)
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		logger.Error(ctx, "Failed to ping MongoDB primary", err)
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info(ctx, "MongoDB client initialized successfully.")
	return &Client{client: client, db: client.Database(cfg.Database), logger: logger}, nil
}

// Database returns the configured database.
func (c *Client) Database() *mongo.Database { return c.db }

// Collection returns the named collection wrapped for docstore.
func (c *Client) Collection(name string) *Collection {
	return NewCollection(c.db.Collection(name))
}

// Ping is useful for health checks.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.client.Ping(pingCtx, readpref.Primary())
}

// Close disconnects the client. It should be called on shutdown.
func (c *Client) Close(ctx context.Context) error {
	c.logger.Info(ctx, "Closing MongoDB connection.")
	if err := c.client.Disconnect(ctx); err != nil {
		c.logger.Error(ctx, "Error closing MongoDB connection", err)
		return err
	}
	return nil
}
