package driven

import (
	"context"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
)

// UploadStore persists image content hash to hosted URL mappings across runs.
type UploadStore interface {
	// Get returns the URL stored for hash. Returns ("", false, nil) on a miss.
	Get(ctx context.Context, hash string) (string, bool, error)
	// Set records the URL for hash, replacing any previous value.
	Set(ctx context.Context, hash, url string) error
	// List returns every stored record, newest first.
	List(ctx context.Context) ([]model.UploadRecord, error)
}
