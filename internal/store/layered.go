package store

import (
	"context"
	"errors"
)

// Layered reads through a memory layer in front of a persistent store.
type Layered struct {
	memory     Store
	persistent Store
}

// NewLayered wraps persistent with a memory layer.
func NewLayered(persistent Store) *Layered {
	return &Layered{memory: NewMemory(), persistent: persistent}
}

// Get checks memory first, then the persistent store, promoting hits.
func (l *Layered) Get(ctx context.Context, key string) ([]byte, error) {
	if v, err := l.memory.Get(ctx, key); err == nil {
		return v, nil
	}
	v, err := l.persistent.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = l.memory.Set(ctx, key, v)
	return v, nil
}

// Set writes through to the persistent store before updating memory.
func (l *Layered) Set(ctx context.Context, key string, value []byte) error {
	if err := l.persistent.Set(ctx, key, value); err != nil {
		return err
	}
	return l.memory.Set(ctx, key, value)
}

func (l *Layered) Delete(ctx context.Context, key string) error {
	_ = l.memory.Delete(ctx, key)
	return l.persistent.Delete(ctx, key)
}

func (l *Layered) Close() error {
	return errors.Join(l.memory.Close(), l.persistent.Close())
}
