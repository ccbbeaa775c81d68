// Package store persists the downloaded dataset and its release tag.
package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get for keys that were never set.
var ErrNotFound = errors.New("store: key not found")

// Namespace prefixes every key pat writes.
const Namespace = "pat"

// Key joins parts under the pat namespace, e.g. Key("bcd", "tag") is
// "pat:bcd:tag".
func Key(parts ...string) string {
	return Namespace + ":" + strings.Join(parts, ":")
}

var (
	// KeyTag holds the release tag of the cached dataset.
	KeyTag = Key("bcd", "tag")
	// KeyData holds the dataset document itself.
	KeyData = Key("bcd", "data")
)

// Store is a key-value blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetString is Get for text values.
func GetString(ctx context.Context, s Store, key string) (string, error) {
	b, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
