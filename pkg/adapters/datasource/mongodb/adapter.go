package mongodb

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-export/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-export/pkg/config"
	"github.com/ekaya-inc/ekaya-export/pkg/logging"
	"github.com/ekaya-inc/ekaya-export/pkg/retry"
)

const closeTimeout = 5 * time.Second

// Adapter provides MongoDB connectivity. One Adapter holds one client for the
// whole run.
type Adapter struct {
	config *Config
	client *mongo.Client
	logger *zap.Logger
	retry  *retry.Config
}

// buildConnectionURI builds a MongoDB URI with escaped credentials.
// Passwords may contain characters (@, /, :) that would otherwise break parsing.
// When running in Docker, localhost is resolved to host.docker.internal.
func buildConnectionURI(cfg *Config) string {
	if cfg.URI != "" {
		return cfg.URI
	}

	host := config.ResolveHostForDocker(cfg.Host)

	u := &url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(host, strconv.Itoa(cfg.Port)),
		Path:   "/",
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
		q := url.Values{}
		q.Set("authSource", cfg.AuthSource)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// NewAdapter creates a MongoDB client. The driver connects lazily; call
// TestConnection to verify the server is reachable.
func NewAdapter(ctx context.Context, cfg *Config, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	uri := buildConnectionURI(cfg)
	timeout := time.Duration(cfg.ConnectTimeoutSeconds) * time.Second

	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetAppName("ekaya-export")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %s", logging.SanitizeError(err))
	}

	logger.Debug("Created mongodb client", zap.String("uri", logging.SanitizeConnectionString(uri)))

	return &Adapter{
		config: cfg,
		client: client,
		logger: logger,
		retry:  retry.DefaultConfig(),
	}, nil
}

// TestConnection pings the primary, retrying transient network failures.
func (a *Adapter) TestConnection(ctx context.Context) error {
	attempt := 0
	err := retry.DoIfRetryable(ctx, a.retry, func() error {
		attempt++
		if err := a.client.Ping(ctx, readpref.Primary()); err != nil {
			a.logger.Warn("Ping failed",
				zap.Int("attempt", attempt),
				zap.String("error", logging.SanitizeError(err)))
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// FindDocuments returns every document in database.collection matching filter.
// Documents are copied out of the cursor buffer before it is reused.
func (a *Adapter) FindDocuments(ctx context.Context, database, collection string, filter bson.D) ([]bson.Raw, error) {
	if filter == nil {
		filter = bson.D{}
	}

	cur, err := a.client.Database(database).Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find in %s.%s: %w", database, collection, err)
	}
	defer cur.Close(ctx)

	var docs []bson.Raw
	for cur.Next(ctx) {
		doc := make(bson.Raw, len(cur.Current))
		copy(doc, cur.Current)
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s.%s: %w", database, collection, err)
	}
	return docs, nil
}

// Close disconnects the client.
func (a *Adapter) Close() error {
	if a.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := a.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	return nil
}

// Ensure Adapter implements the datasource interfaces at compile time.
var (
	_ datasource.ConnectionTester = (*Adapter)(nil)
	_ datasource.DocumentReader   = (*Adapter)(nil)
)
