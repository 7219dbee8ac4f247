package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/storefront/backoffice/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	appName        = "backoffice"
)

type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// clientOptions bounds server selection by the connect timeout so a CLI run
// against an unreachable cluster fails within it instead of the driver's 30s.
func clientOptions(cfg Config) *options.ClientOptions {
	return options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(cfg.timeout())
}

// Connect returns a client that has answered a primary ping, and the
// configured database on it. The caller owns Disconnect.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	if cfg.Database == "" {
		return nil, nil, errors.New("mongo: database name is required")
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}

// scopeFilter adds the soft-delete condition for scope to f. A nil deleted_at
// matches both a stored null and a missing field.
func scopeFilter(f bson.M, scope domain.Scope) bson.M {
	if scope == domain.LiveOnly {
		f["deleted_at"] = nil
	}
	return f
}

// uniqueFilter matches every holder of value in field, minus excludeID.
func uniqueFilter(field, value string, excludeID int64, scope domain.Scope) bson.M {
	f := bson.M{field: value}
	if excludeID != domain.NoID {
		f["_id"] = bson.M{"$ne": excludeID}
	}
	return scopeFilter(f, scope)
}

// translate maps driver errors onto domain sentinels.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrAlreadyExists
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func timePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
