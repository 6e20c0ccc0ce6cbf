// Package kv provides the durable key-value storage underneath the entity
// store. Each storage key holds one JSON document, typically the full
// snapshot of a collection.
package kv

import (
	"context"
	"encoding/json"
)

// Adapter is the persistence contract. Load reports absence via the boolean,
// not an error; a key that was never written yields (nil, false, nil).
type Adapter interface {
	Load(ctx context.Context, key string) (json.RawMessage, bool, error)
	Save(ctx context.Context, key string, value json.RawMessage) error
	Delete(ctx context.Context, key string) error
}
