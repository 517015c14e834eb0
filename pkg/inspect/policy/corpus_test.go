package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_LoadConcatenatesInNameOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"returns.txt":  {Data: []byte("Returns accepted within 30 days.")},
		"defects.txt":  {Data: []byte("Manufacturing defects repaired free.")},
		"shipping.txt": {Data: []byte("Shipping covered for seller faults.")},
		"notes.md":     {Data: []byte("ignored, wrong extension")},
	}

	corpus, err := NewFS(fsys).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t,
		"Manufacturing defects repaired free."+Separator+
			"Returns accepted within 30 days."+Separator+
			"Shipping covered for seller faults."+Separator,
		corpus)
	assert.NotContains(t, corpus, "ignored")
}

func TestFS_LoadEmptyDirectory(t *testing.T) {
	corpus, err := NewFS(fstest.MapFS{}).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, corpus)
}

func TestFS_LoadSeesEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "returns.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	corpus := NewDir(dir)
	ctx := context.Background()

	first, err := corpus.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, first, "v1")

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	second, err := corpus.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, second, "v2")
	assert.NotContains(t, second, "v1")
}

func TestFS_LoadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFS(fstest.MapFS{}).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatic(t *testing.T) {
	corpus, err := Static("fixed policy text").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed policy text", corpus)
}
