package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parking_marketplace/internal/repository"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type pgBlobRepository struct {
	db    *sqlx.DB
	table string // đã quote
}

func NewPgBlobRepository(db *sqlx.DB, table string) repository.BlobStore {
	return &pgBlobRepository{db: db, table: pq.QuoteIdentifier(table)}
}

// EnsureSchema tạo bảng blob nếu chưa có.
func EnsureSchema(ctx context.Context, db *sqlx.DB, table string) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, pq.QuoteIdentifier(table))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return wrapPgError("BlobRepository.EnsureSchema", err)
	}
	return nil
}

func (r *pgBlobRepository) Get(ctx context.Context, key string) (string, error) {
	ctx, done := beginSubsegment(ctx, "BlobRepository.Get")
	var value string
	err := r.db.GetContext(ctx, &value, fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, r.table), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			done(nil)
			return "", repository.ErrNotFound
		}
		done(err)
		return "", wrapPgError("BlobRepository.Get", err)
	}
	done(nil)
	return value, nil
}

func (r *pgBlobRepository) Put(ctx context.Context, key, value string) error {
	ctx, done := beginSubsegment(ctx, "BlobRepository.Put")
	query := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP`, r.table)
	_, err := r.db.ExecContext(ctx, query, key, value)
	done(err)
	if err != nil {
		return wrapPgError("BlobRepository.Put", err)
	}
	return nil
}

func (r *pgBlobRepository) Delete(ctx context.Context, key string) error {
	ctx, done := beginSubsegment(ctx, "BlobRepository.Delete")
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, r.table), key)
	done(err)
	if err != nil {
		return wrapPgError("BlobRepository.Delete", err)
	}
	return nil
}

func wrapPgError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s (%s): %w", op, pqErr.Code.Name(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// beginSubsegment: ngoài request HTTP (ví dụ lúc load khi khởi động) sẽ không có segment cha.
func beginSubsegment(ctx context.Context, name string) (context.Context, func(error)) {
	ctx, seg := xray.BeginSubsegment(ctx, name)
	return ctx, func(err error) {
		if seg != nil {
			seg.Close(err)
		}
	}
}
