package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/simple-site/pkg/simplesite"
	"github.com/tendant/simple-site/pkg/simplesite/urlstrategy"
)

// ErrInvalidKey is returned for keys that would resolve outside BaseDir
var ErrInvalidKey = errors.New("invalid object key")

// Backend is a filesystem implementation of the simplesite.BlobStore interface
type Backend struct {
	baseDir string
	urls    urlstrategy.URLStrategy
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for published files
	URLPrefix string // Optional public URL prefix the directory is served under
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	// Validate and create base directory if it doesn't exist
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	baseDir, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	b := &Backend{baseDir: baseDir}
	if config.URLPrefix != "" {
		b.urls = urlstrategy.NewCDNStrategy(config.URLPrefix)
	}
	return b, nil
}

// path resolves key under baseDir
func (b *Backend) path(key string) (string, error) {
	p := filepath.Join(b.baseDir, filepath.FromSlash(key))
	if p == b.baseDir || !strings.HasPrefix(p, b.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return p, nil
}

// URL returns the URL prefix joined with key, or a file:// URL when no
// prefix is configured
func (b *Backend) URL(key string) (string, error) {
	p, err := b.path(key)
	if err != nil {
		return "", err
	}
	if b.urls != nil {
		return b.urls.PublicURL(key)
	}
	return "file://" + filepath.ToSlash(p), nil
}

// Put writes the document, replacing any previous version atomically
func (b *Backend) Put(ctx context.Context, key string, html []byte) (string, error) {
	url, err := b.URL(key)
	if err != nil {
		return "", &simplesite.StorageError{Backend: "fs", Key: key, Op: "put", Err: err}
	}
	filePath, _ := b.path(key)

	// Create directory structure if it doesn't exist
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &simplesite.StorageError{Backend: "fs", Key: key, Op: "put", Err: fmt.Errorf("failed to create directory: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, ".publish-*")
	if err != nil {
		return "", &simplesite.StorageError{Backend: "fs", Key: key, Op: "put", Err: fmt.Errorf("failed to create file: %w", err)}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		return "", &simplesite.StorageError{Backend: "fs", Key: key, Op: "put", Err: fmt.Errorf("failed to write file: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		return "", &simplesite.StorageError{Backend: "fs", Key: key, Op: "put", Err: fmt.Errorf("failed to write file: %w", err)}
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", &simplesite.StorageError{Backend: "fs", Key: key, Op: "put", Err: err}
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return "", &simplesite.StorageError{Backend: "fs", Key: key, Op: "put", Err: fmt.Errorf("failed to replace file: %w", err)}
	}

	return url, nil
}
