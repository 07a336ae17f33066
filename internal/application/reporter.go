package application

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
	"github.com/ericfisherdev/iconbot/internal/domain/port/driven"
)

// ReportHeader is the first line of every sprite diff comment.
const ReportHeader = "Icons with diff:"

const emptyImage = "![]()"

// ErrEmptyComparison is returned when the comparer produced no states at all.
var ErrEmptyComparison = errors.New("comparer returned no states")

// DiffReporter compares sprite revisions and renders one collapsible report
// block per changed file.
type DiffReporter struct {
	comparer  driven.SpriteComparer
	publisher ImagePublisher
}

// NewDiffReporter creates a DiffReporter.
func NewDiffReporter(comparer driven.SpriteComparer, publisher ImagePublisher) *DiffReporter {
	return &DiffReporter{comparer: comparer, publisher: publisher}
}

// RenderPath compares both sides of pair and returns its report block.
// An empty block with a nil error means every state was Equal.
func (r *DiffReporter) RenderPath(ctx context.Context, pair model.SpritePair) (string, error) {
	diffs, err := r.comparer.Compare(ctx, pair.Before, pair.After)
	if err != nil {
		return "", fmt.Errorf("comparing %s: %w", pair.Path, err)
	}
	if len(diffs) == 0 {
		return "", fmt.Errorf("comparing %s: %w", pair.Path, ErrEmptyComparison)
	}

	var rows []string
	for _, d := range diffs {
		if d.Status == model.DiffEqual {
			continue
		}
		before := r.imageLink(ctx, pair.Path, d.Key, d.Before, d.BeforeHash)
		after := r.imageLink(ctx, pair.Path, d.Key, d.After, d.AfterHash)
		rows = append(rows, fmt.Sprintf("%s|%s|%s|%s", escapeCell(d.Key), before, after, d.Status))
	}
	if len(rows) == 0 {
		return "", nil
	}

	lines := make([]string, 0, len(rows)+4)
	lines = append(lines,
		fmt.Sprintf("<details><summary>%s</summary>\n", html.EscapeString(pair.Path)),
		"Key | Old | New | Status",
		"--- | --- | --- | ---",
	)
	lines = append(lines, rows...)
	lines = append(lines, "</details>")
	return strings.Join(lines, "\n"), nil
}

// imageLink publishes one side of a state. Missing images, and images that
// could not be published, render as the empty placeholder.
func (r *DiffReporter) imageLink(ctx context.Context, path, key string, data []byte, hash string) string {
	if len(data) == 0 {
		return emptyImage
	}
	url, err := r.publisher.PublishImage(ctx, hash, data)
	if err != nil {
		slog.Warn("failed to publish sprite state", "path", path, "key", key, "error", err)
		return emptyImage
	}
	return fmt.Sprintf("![%s](%s)", escapeAlt(key), url)
}

// BuildReport joins the non-empty blocks under the report header. It returns
// "" when there is nothing to report.
func BuildReport(blocks []string) string {
	parts := []string{ReportHeader}
	for _, b := range blocks {
		if b != "" {
			parts = append(parts, b)
		}
	}
	if len(parts) == 1 {
		return ""
	}
	return strings.Join(parts, "\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func escapeAlt(s string) string {
	return strings.NewReplacer("|", `\|`, "[", `\[`, "]", `\]`).Replace(s)
}
