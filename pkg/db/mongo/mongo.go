// Package mongo holds helpers shared by the Mongo-backed stores.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WithTimeout bounds ctx by timeout, keeping an earlier caller deadline.
// Session contexts are returned unchanged so transaction semantics survive.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// EnsureUniqueIndex creates a named unique index over keys if it does not exist.
func EnsureUniqueIndex(ctx context.Context, collection *mongo.Collection, name string, keys bson.D) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name).SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create index %s on %s: %w", name, collection.Name(), err)
	}
	return nil
}
