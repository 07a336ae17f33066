package driven

import (
	"context"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
)

// ReportSink receives the rendered sprite diff report for a pull request.
type ReportSink interface {
	Publish(ctx context.Context, ev model.InboundEvent, body string) error
}
