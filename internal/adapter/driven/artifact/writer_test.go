package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
)

const sampleReport = "Icons with diff:\n<details><summary>icons/test.dmi</summary>\n\nKey | Old | New | Status\n--- | --- | --- | ---\nidle|![idle](abc.png)|![]()|Removed\n</details>"

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_ReportTable(t *testing.T) {
	result := RenderMarkdown(sampleReport)

	assert.Contains(t, result, "<details>")
	assert.Contains(t, result, "<summary>icons/test.dmi</summary>")
	assert.Contains(t, result, "<table>")
	assert.Contains(t, result, `<img src="abc.png"`)
	assert.Contains(t, result, "Removed")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	result := RenderMarkdown(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestWriter_Publish(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "debug")
	w, err := NewWriter(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, w.Dir())

	ev := model.InboundEvent{Number: 12, Base: model.RepoRef{FullName: "org/repo"}}
	require.NoError(t, w.Publish(context.Background(), ev, sampleReport))

	md, err := os.ReadFile(filepath.Join(dir, "pr-12.md"))
	require.NoError(t, err)
	assert.Equal(t, sampleReport, string(md))

	page, err := os.ReadFile(filepath.Join(dir, "pr-12.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>org/repo #12</title>")
	assert.Contains(t, string(page), "<table>")
}

func TestWriter_PublishImageAndFragment(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	rel, err := w.PublishImage(context.Background(), "abc", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "abc.png", rel)

	data, err := os.ReadFile(filepath.Join(w.Dir(), rel))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	require.NoError(t, w.WriteFragment(7, "icons/mob/human.dmi", "fragment"))
	data, err = os.ReadFile(filepath.Join(w.Dir(), "human_7.log"))
	require.NoError(t, err)
	assert.Equal(t, "fragment", string(data))
}

func TestWriter_PublishImage_HashlessImagesKeepDistinctFiles(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	north, err := w.PublishImage(context.Background(), "", []byte("north"))
	require.NoError(t, err)
	south, err := w.PublishImage(context.Background(), "", []byte("south"))
	require.NoError(t, err)

	assert.NotEqual(t, north, south)
	assert.Equal(t, model.ContentHash([]byte("north"))+".png", north)

	data, err := os.ReadFile(filepath.Join(w.Dir(), north))
	require.NoError(t, err)
	assert.Equal(t, []byte("north"), data)
}
