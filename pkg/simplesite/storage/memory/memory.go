package memory

import (
	"context"
	"errors"
	"sync"
)

// Object is a stored document together with the headers it was sent with
type Object struct {
	Body         []byte
	ContentType  string
	CacheControl string
}

// Backend is an in-memory implementation of the simplesite.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]Object
	baseURL string
	err     error
}

// DefaultBaseURL prefixes the URLs the memory backend hands out
const DefaultBaseURL = "memory://published"

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]Object),
		baseURL: DefaultBaseURL,
	}
}

// URL returns the pseudo URL for key
func (b *Backend) URL(key string) (string, error) {
	return b.baseURL + "/" + key, nil
}

// Put stores the document
func (b *Backend) Put(ctx context.Context, key string, html []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return "", b.err
	}

	body := make([]byte, len(html))
	copy(body, html)
	b.objects[key] = Object{
		Body:         body,
		ContentType:  "text/html; charset=utf-8",
		CacheControl: "no-cache, no-store, must-revalidate",
	}
	return b.URL(key)
}

// Get returns the document stored under key
func (b *Backend) Get(key string) (Object, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	if !exists {
		return Object{}, errors.New("object not found")
	}
	return obj, nil
}

// Keys lists every stored key
func (b *Backend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	return keys
}

// FailWith makes every later Put return err. A nil err clears it.
func (b *Backend) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}
