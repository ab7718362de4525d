package repository

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("record not found")

// Các key trong blob store.
const (
	KeyParkingSpaces   = "parkingSpaces"
	KeyBookings        = "bookings"
	KeyIsAuthenticated = "isAuthenticated"
)

// BlobStore là kho key-value phẳng mà các store in-memory ghi đè toàn bộ collection vào.
type BlobStore interface {
	// Get trả về ErrNotFound khi key chưa tồn tại.
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	// Delete không lỗi nếu key không tồn tại.
	Delete(ctx context.Context, key string) error
}
