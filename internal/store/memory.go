package store

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process Store. Values never expire.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if v, found := m.cache.Get(key); found {
		return v.([]byte), nil
	}
	return nil, ErrNotFound
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.cache.Set(key, value, gocache.NoExpiration)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

// Close drops every value.
func (m *Memory) Close() error {
	m.cache.Flush()
	return nil
}
