package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/iconbot/internal/application"
	"github.com/ericfisherdev/iconbot/internal/domain/model"
)

func newReporter(diffs []model.SubImageDiff, err error) (*application.DiffReporter, *mockComparer, *mockImageHost) {
	cmp := &mockComparer{compare: func(_, _ []byte) ([]model.SubImageDiff, error) { return diffs, err }}
	host := &mockImageHost{}
	return application.NewDiffReporter(cmp, application.NewUploadPublisher(newMockUploadStore(), host)), cmp, host
}

func TestDiffReporter_RenderPath_ChangedRow(t *testing.T) {
	r, _, host := newReporter([]model.SubImageDiff{
		{Key: "idle", Status: model.DiffChanged, Before: []byte("a"), After: []byte("b"), BeforeHash: "h1", AfterHash: "h2"},
	}, nil)

	block, err := r.RenderPath(context.Background(), model.SpritePair{Path: "icons/test.dmi", Before: []byte("x"), After: []byte("y")})
	require.NoError(t, err)

	want := "<details><summary>icons/test.dmi</summary>\n\n" +
		"Key | Old | New | Status\n" +
		"--- | --- | --- | ---\n" +
		"idle|![idle](https://img.example.com/h1.png)|![idle](https://img.example.com/h2.png)|Changed\n" +
		"</details>"
	assert.Equal(t, want, block)
	assert.Equal(t, 2, host.count())
}

func TestDiffReporter_RenderPath_MissingSidesUsePlaceholder(t *testing.T) {
	r, _, _ := newReporter([]model.SubImageDiff{
		{Key: "new_state", Status: model.DiffAdded, After: []byte("b"), AfterHash: "h2"},
		{Key: "old_state", Status: model.DiffRemoved, Before: []byte("a"), BeforeHash: "h1"},
	}, nil)

	block, err := r.RenderPath(context.Background(), model.SpritePair{Path: "icons/x.dmi", After: []byte("y")})
	require.NoError(t, err)
	assert.Contains(t, block, "new_state|![]()|![new_state](https://img.example.com/h2.png)|Added\n")
	assert.Contains(t, block, "old_state|![old_state](https://img.example.com/h1.png)|![]()|Removed\n")
}

func TestDiffReporter_RenderPath_EqualOnlyIsEmpty(t *testing.T) {
	r, _, host := newReporter([]model.SubImageDiff{
		{Key: "idle", Status: model.DiffEqual, Before: []byte("a"), After: []byte("a")},
	}, nil)

	block, err := r.RenderPath(context.Background(), model.SpritePair{Path: "icons/x.dmi", Before: []byte("x"), After: []byte("x")})
	require.NoError(t, err)
	assert.Empty(t, block)
	assert.Zero(t, host.count())
}

func TestDiffReporter_RenderPath_CompareFailures(t *testing.T) {
	r, _, _ := newReporter(nil, nil)
	_, err := r.RenderPath(context.Background(), model.SpritePair{Path: "icons/x.dmi", After: []byte("y")})
	assert.ErrorIs(t, err, application.ErrEmptyComparison)

	r, _, _ = newReporter(nil, errors.New("comparer crashed"))
	_, err = r.RenderPath(context.Background(), model.SpritePair{Path: "icons/x.dmi", After: []byte("y")})
	assert.ErrorContains(t, err, "comparer crashed")
}

func TestDiffReporter_RenderPath_UploadFailureFallsBackToPlaceholder(t *testing.T) {
	cmp := &mockComparer{compare: func(_, _ []byte) ([]model.SubImageDiff, error) {
		return []model.SubImageDiff{{Key: "idle", Status: model.DiffAdded, After: []byte("b")}}, nil
	}}
	host := &mockImageHost{err: errors.New("host down")}
	r := application.NewDiffReporter(cmp, application.NewUploadPublisher(newMockUploadStore(), host))

	block, err := r.RenderPath(context.Background(), model.SpritePair{Path: "icons/x.dmi", After: []byte("y")})
	require.NoError(t, err)
	assert.Contains(t, block, "idle|![]()|![]()|Added")
}

func TestDiffReporter_EscapesPipesInKeys(t *testing.T) {
	r, _, _ := newReporter([]model.SubImageDiff{
		{Key: "a|b", Status: model.DiffRemoved},
	}, nil)

	block, err := r.RenderPath(context.Background(), model.SpritePair{Path: "icons/x.dmi", Before: []byte("x")})
	require.NoError(t, err)
	assert.Contains(t, block, `a\|b|![]()|![]()|Removed`)
}

func TestDiffReporter_EscapesPathInSummary(t *testing.T) {
	r, _, _ := newReporter([]model.SubImageDiff{
		{Key: "idle", Status: model.DiffRemoved},
	}, nil)

	block, err := r.RenderPath(context.Background(), model.SpritePair{Path: "icons/<b>&co.dmi", Before: []byte("x")})
	require.NoError(t, err)
	assert.Contains(t, block, "<summary>icons/&lt;b&gt;&amp;co.dmi</summary>")
}

func TestBuildReport(t *testing.T) {
	assert.Empty(t, application.BuildReport(nil))
	assert.Empty(t, application.BuildReport([]string{"", ""}))
	assert.Equal(t, "Icons with diff:\nblock-a\nblock-b", application.BuildReport([]string{"block-a", "", "block-b"}))
}
