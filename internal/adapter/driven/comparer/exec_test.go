package comparer

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/iconbot/internal/adapter/driven/scratch"
	"github.com/ericfisherdev/iconbot/internal/domain/model"
)

// shellComparer builds an Exec around an inline sh script. The staged paths
// arrive as $1 and $2.
func shellComparer(t *testing.T, script string, timeout time.Duration) (*Exec, *scratch.Area) {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	area, err := scratch.NewArea(t.TempDir(), false)
	require.NoError(t, err)

	cmp, err := NewExec([]string{"sh", "-c", script, "comparer"}, timeout, area)
	require.NoError(t, err)
	return cmp, area
}

func TestNewExec_EmptyCommand(t *testing.T) {
	_, err := NewExec(nil, time.Second, nil)
	assert.Error(t, err)
}

func TestCompare_DecodesStates(t *testing.T) {
	// "aW1n" is base64 for "img".
	script := `test -f "$1" && test -f "$2" || exit 3
printf '{"states":[{"key":"idle","status":"Changed","before":"aW1n","after":"aW1n","before_hash":"h1"},{"key":"walk","status":"Equal"}]}'`
	cmp, area := shellComparer(t, script, 5*time.Second)

	diffs, err := cmp.Compare(context.Background(), []byte("old"), []byte("new"))
	require.NoError(t, err)
	require.Len(t, diffs, 2)

	assert.Equal(t, model.SubImageDiff{
		Key:        "idle",
		Status:     model.DiffChanged,
		Before:     []byte("img"),
		After:      []byte("img"),
		BeforeHash: "h1",
	}, diffs[0])
	assert.Equal(t, model.DiffEqual, diffs[1].Status)

	entries, err := os.ReadDir(area.Root())
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch run must be released")
}

func TestCompare_MissingSidePassesEmptyArgument(t *testing.T) {
	script := `test -z "$1" || exit 3
test -f "$2" || exit 4
printf '{"states":[{"key":"new","status":"Added","after":"aW1n"}]}'`
	cmp, _ := shellComparer(t, script, 5*time.Second)

	diffs, err := cmp.Compare(context.Background(), nil, []byte("new"))
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, model.DiffAdded, diffs[0].Status)
	assert.Nil(t, diffs[0].Before)
}

func TestCompare_CommandFailureReleasesScratch(t *testing.T) {
	cmp, area := shellComparer(t, `echo "broken sprite" >&2; exit 1`, 5*time.Second)

	_, err := cmp.Compare(context.Background(), []byte("old"), []byte("new"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken sprite")

	entries, err := os.ReadDir(area.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCompare_UnknownStatus(t *testing.T) {
	cmp, _ := shellComparer(t, `printf '{"states":[{"key":"x","status":"Mystery"}]}'`, 5*time.Second)

	_, err := cmp.Compare(context.Background(), []byte("a"), []byte("b"))
	assert.ErrorContains(t, err, "unknown status")
}

func TestCompare_Timeout(t *testing.T) {
	cmp, _ := shellComparer(t, `sleep 5`, 50*time.Millisecond)

	start := time.Now()
	_, err := cmp.Compare(context.Background(), []byte("a"), []byte("b"))

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestCompare_KeepModeRetainsInputs(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	area, err := scratch.NewArea(t.TempDir(), true)
	require.NoError(t, err)
	cmp, err := NewExec([]string{"sh", "-c", `printf '{"states":[]}'`, "comparer"}, time.Second, area)
	require.NoError(t, err)

	_, err = cmp.Compare(context.Background(), []byte("a"), []byte("b"))
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(area.Root(), "compare-*", "before.dmi"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
