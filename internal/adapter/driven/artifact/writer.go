// Package artifact writes sprite diff reports and images to local storage
// instead of publishing them, for debug runs.
package artifact

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
	"github.com/ericfisherdev/iconbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReportSink = (*Writer)(nil)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
	htmlSanitizer.AllowElements("details", "summary")
}

const previewTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body>
%s
</body>
</html>
`

// Writer stores reports as markdown plus a sanitized HTML preview, and
// images as files named by content hash.
type Writer struct {
	dir string
}

// NewWriter creates dir if needed and returns a Writer rooted there.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the artifact directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Publish writes pr-<number>.md and pr-<number>.html.
func (w *Writer) Publish(_ context.Context, ev model.InboundEvent, body string) error {
	base := filepath.Join(w.dir, fmt.Sprintf("pr-%d", ev.Number))

	if err := os.WriteFile(base+".md", []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing markdown report: %w", err)
	}

	title := fmt.Sprintf("%s #%d", ev.Base.FullName, ev.Number)
	page := fmt.Sprintf(previewTemplate, htmlSanitizer.Sanitize(title), RenderMarkdown(body))
	if err := os.WriteFile(base+".html", []byte(page), 0o644); err != nil {
		return fmt.Errorf("writing html preview: %w", err)
	}

	return nil
}

// WriteFragment stores the report block for a single sprite path, named after
// the sprite and the pull request number.
func (w *Writer) WriteFragment(number int, spritePath, fragment string) error {
	name := strings.TrimSuffix(filepath.Base(spritePath), model.SpriteExtension)
	path := filepath.Join(w.dir, fmt.Sprintf("%s_%d.log", name, number))
	if err := os.WriteFile(path, []byte(fragment), 0o644); err != nil {
		return fmt.Errorf("writing report fragment: %w", err)
	}
	return nil
}

// PublishImage stores data as <hash>.png and returns its path relative to
// the artifact directory, so the markdown and HTML previews resolve it. An
// empty hash is computed from data.
func (w *Writer) PublishImage(_ context.Context, hash string, data []byte) (string, error) {
	if hash == "" {
		hash = model.ContentHash(data)
	}
	name := hash + ".png"
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing image %s: %w", name, err)
	}
	return name, nil
}

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}
