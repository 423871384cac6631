package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-site/pkg/simplesite"
)

func TestFSBackend_Put(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp, URLPrefix: "http://localhost:8080/published/"})
	require.NoError(t, err)

	ctx := context.Background()
	key := "sites/abc/index.html"

	url, err := backend.Put(ctx, key, []byte("<p>one</p>"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/published/sites/abc/index.html", url)

	got, err := os.ReadFile(filepath.Join(tmp, "sites", "abc", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>one</p>", string(got))

	// Overwrite
	_, err = backend.Put(ctx, key, []byte("<p>two</p>"))
	require.NoError(t, err)
	got, err = os.ReadFile(filepath.Join(tmp, "sites", "abc", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>two</p>", string(got))

	entries, err := os.ReadDir(filepath.Join(tmp, "sites", "abc"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFSBackend_URLWithoutPrefix(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	require.NoError(t, err)

	url, err := backend.URL("sites/abc/about.html")
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(filepath.Join(backend.baseDir, "sites", "abc", "about.html")), url)
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: filepath.Join(tmp, "root")})
	require.NoError(t, err)

	_, err = backend.Put(context.Background(), "sites/abc/../../../evil.html", []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidKey)

	var storageErr *simplesite.StorageError
	assert.ErrorAs(t, err, &storageErr)

	_, statErr := os.Stat(filepath.Join(tmp, "evil.html"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
