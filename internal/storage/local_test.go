package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msurti/recordkeeper/internal/model"
)

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	local := NewLocal(dir)

	locator, err := local.Store(context.Background(), Upload{
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		Size:        4,
		Resource:    model.ResourceRaw,
		Body:        strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(locator, "/uploads/"))
	assert.True(t, strings.HasSuffix(locator, "-report.pdf"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(locator, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

func TestLocalStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	local := NewLocal(dir)

	_, err := local.Store(context.Background(), Upload{
		Filename: "logo.png",
		Body:     strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)

	// A second write must not trip over the existing directory.
	_, err = local.Store(context.Background(), Upload{
		Filename: "logo.png",
		Body:     strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
}

func TestLocalStoreUniqueNames(t *testing.T) {
	dir := t.TempDir()
	local := NewLocal(dir)

	first, err := local.Store(context.Background(), Upload{Filename: "same.png", Body: strings.NewReader("a")})
	require.NoError(t, err)
	second, err := local.Store(context.Background(), Upload{Filename: "same.png", Body: strings.NewReader("b")})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSafeBaseStripsPathComponents(t *testing.T) {
	assert.Equal(t, "passwd", safeBase("../../etc/passwd"))
	assert.Equal(t, "upload", safeBase(""))
	assert.Equal(t, "report.pdf", safeBase("report.pdf"))
}
