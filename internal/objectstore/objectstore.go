// Package objectstore defines the conditional-write object storage contract that
// project documents are persisted through, plus an in-process implementation.
package objectstore

import (
	"context"
	"errors"
	"iter"
)

var (
	// ErrNotExist is returned when no object is stored under the key.
	ErrNotExist = errors.New("object does not exist")
	// ErrPreconditionFailed is returned when a conditional write or delete loses:
	// the key already exists on Create, or its ETag changed on Replace/Delete.
	ErrPreconditionFailed = errors.New("object precondition failed")
)

// Object is one stored value and the opaque version it was read at.
type Object struct {
	Key  string
	Data []byte
	ETag string
}

// Bucket stores whole objects by key. Every write replaces the object atomically;
// there are no partial updates.
type Bucket interface {
	Get(ctx context.Context, key string) (*Object, error)
	// Create stores data only if key is absent and returns the new ETag.
	Create(ctx context.Context, key string, data []byte) (string, error)
	// Replace stores data only if the current ETag equals etag and returns the new ETag.
	Replace(ctx context.Context, key string, data []byte, etag string) (string, error)
	// Delete removes the object only if the current ETag equals etag.
	Delete(ctx context.Context, key, etag string) error
	// Keys yields every key with the given prefix in lexical order.
	Keys(ctx context.Context, prefix string) iter.Seq2[string, error]
	Ping(ctx context.Context) error
}
