package application

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
	"github.com/ericfisherdev/iconbot/internal/domain/port/driven"
)

// ImagePublisher turns image bytes into a URL that can be embedded in the report.
type ImagePublisher interface {
	PublishImage(ctx context.Context, hash string, data []byte) (string, error)
}

// UploadPublisher uploads images to the image host at most once per content
// hash. Published URLs are remembered in the upload store across runs, and
// concurrent requests for the same hash share a single upload.
type UploadPublisher struct {
	store driven.UploadStore
	host  driven.ImageHost
	group singleflight.Group
}

// NewUploadPublisher creates an UploadPublisher.
func NewUploadPublisher(store driven.UploadStore, host driven.ImageHost) *UploadPublisher {
	return &UploadPublisher{store: store, host: host}
}

// PublishImage returns the cached URL for hash, uploading data on a miss.
func (p *UploadPublisher) PublishImage(ctx context.Context, hash string, data []byte) (string, error) {
	if hash == "" {
		hash = model.ContentHash(data)
	}

	v, err, _ := p.group.Do(hash, func() (any, error) {
		url, ok, err := p.store.Get(ctx, hash)
		if err != nil {
			return "", fmt.Errorf("looking up upload %s: %w", hash, err)
		}
		if ok {
			return url, nil
		}

		url, err = p.host.Upload(ctx, hash+".png", data)
		if err != nil {
			return "", fmt.Errorf("uploading image %s: %w", hash, err)
		}

		if err := p.store.Set(ctx, hash, url); err != nil {
			slog.Warn("failed to record upload", "hash", hash, "url", url, "error", err)
		}
		slog.Debug("image uploaded", "hash", hash, "url", url)
		return url, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
