// Package store defines the narrow key-value contract the command
// handlers rely on, with a Redis implementation for production and an
// in-memory one for tests and dev mode.
package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by GetScalar when the key does not exist.
var ErrNotFound = errors.New("key not found")

// Store is the aggregate state shared by every command. Each operation
// is atomic at the single-key level; handlers tolerate the race window
// between a read and a later write because their dominant access
// pattern is single-user idempotent toggles and commutative increments.
type Store interface {
	AddMember(ctx context.Context, key, member string) error
	RemoveMember(ctx context.Context, key, member string) error
	Members(ctx context.Context, key string) ([]string, error)
	Cardinality(ctx context.Context, key string) (int64, error)
	IncrementScalar(ctx context.Context, key string, delta float64) (float64, error)
	GetScalar(ctx context.Context, key string) (string, error)
	SetScalar(ctx context.Context, key, value string) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Key joins namespace segments with the delimiter used by existing
// stored data. Segment order is a stable contract: "lunch:<day>",
// "utang:<payer>:<payee>", "monito_monita:number:<uid>".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
