package memory

import (
	"context"
	"sync"

	"parking_marketplace/internal/repository"
)

type memBlobRepository struct {
	mu    sync.RWMutex
	blobs map[string]string
}

func NewMemBlobRepository() repository.BlobStore {
	return &memBlobRepository{blobs: make(map[string]string)}
}

func (r *memBlobRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.blobs[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func (r *memBlobRepository) Put(_ context.Context, key, value string) error {
	r.mu.Lock()
	r.blobs[key] = value
	r.mu.Unlock()
	return nil
}

func (r *memBlobRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.blobs, key)
	r.mu.Unlock()
	return nil
}
