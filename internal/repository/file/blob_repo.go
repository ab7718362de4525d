package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"parking_marketplace/internal/repository"
)

// fileBlobRepository giữ toàn bộ blob trong một file JSON {key: value}.
// Mỗi lần ghi, file được ghi lại toàn bộ qua file tạm + rename.
type fileBlobRepository struct {
	mu    sync.Mutex
	path  string
	blobs map[string]string
}

func NewFileBlobRepository(path string) (repository.BlobStore, error) {
	r := &fileBlobRepository{path: path, blobs: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r, nil
		}
		return nil, fmt.Errorf("FileBlobRepository: read %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &r.blobs); err != nil {
			return nil, fmt.Errorf("FileBlobRepository: decode %s: %w", path, err)
		}
	}
	return r, nil
}

func (r *fileBlobRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.blobs[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func (r *fileBlobRepository) Put(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.blobs[key]
	r.blobs[key] = value
	if err := r.flush(); err != nil {
		if existed {
			r.blobs[key] = prev
		} else {
			delete(r.blobs, key)
		}
		return fmt.Errorf("FileBlobRepository.Put(%s): %w", key, err)
	}
	return nil
}

func (r *fileBlobRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.blobs[key]
	if !existed {
		return nil
	}
	delete(r.blobs, key)
	if err := r.flush(); err != nil {
		r.blobs[key] = prev
		return fmt.Errorf("FileBlobRepository.Delete(%s): %w", key, err)
	}
	return nil
}

// flush phải được gọi khi đang giữ r.mu.
func (r *fileBlobRepository) flush() error {
	data, err := json.MarshalIndent(r.blobs, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".store-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, r.path)
}
