package driven

import (
	"context"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
)

// SpriteComparer compares two revisions of a sprite file state by state.
//
// A nil before means the file was added; a nil after means it was removed.
// Implementations must not fail merely because one side is absent. Results are
// returned in the order the comparer reports them and may include Equal entries.
type SpriteComparer interface {
	Compare(ctx context.Context, before, after []byte) ([]model.SubImageDiff, error)
}
