package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
	"github.com/ericfisherdev/iconbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UploadStore = (*UploadRepo)(nil)

// UploadRepo is the SQLite implementation of the UploadStore port interface.
type UploadRepo struct {
	db *DB
}

// NewUploadRepo creates a new UploadRepo.
func NewUploadRepo(db *DB) *UploadRepo {
	return &UploadRepo{db: db}
}

// Get returns the hosted URL recorded for hash.
func (r *UploadRepo) Get(ctx context.Context, hash string) (string, bool, error) {
	const query = `SELECT url FROM uploads WHERE hash = ?`

	var url string
	err := r.db.Reader.QueryRowContext(ctx, query, hash).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get upload %q: %w", hash, err)
	}
	return url, true, nil
}

// Set stores or replaces the URL for hash.
func (r *UploadRepo) Set(ctx context.Context, hash, url string) error {
	const query = `INSERT INTO uploads (hash, url, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(hash) DO UPDATE SET url = excluded.url`

	if _, err := r.db.Writer.ExecContext(ctx, query, hash, url); err != nil {
		return fmt.Errorf("set upload %q: %w", hash, err)
	}
	return nil
}

// List returns all recorded uploads, newest first.
func (r *UploadRepo) List(ctx context.Context) ([]model.UploadRecord, error) {
	const query = `SELECT hash, url, created_at FROM uploads ORDER BY created_at DESC, hash`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var records []model.UploadRecord
	for rows.Next() {
		var rec model.UploadRecord
		var createdAt string
		if err := rows.Scan(&rec.Hash, &rec.URL, &createdAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}

		rec.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for upload %q: %w", rec.Hash, err)
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}

	return records, nil
}

// parseTime parses the timestamp formats SQLite's CURRENT_TIMESTAMP and the
// modernc driver may hand back.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}
