package driven

import "context"

// ImageHost uploads image bytes to the configured hosting API and returns
// the public URL.
type ImageHost interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}
