package simplesite

import (
	"context"
)

// SiteRepository defines persistence for sites. GetByID and Update return
// ErrSiteNotFound when the id does not exist.
type SiteRepository interface {
	// ListByOwner returns every site owned by ownerAccountID, in no particular order
	ListByOwner(ctx context.Context, ownerAccountID string) ([]*Site, error)

	GetByID(ctx context.Context, id string) (*Site, error)

	// Create assigns an id, applies defaults and persists the site before returning
	Create(ctx context.Context, ownerAccountID string, req CreateSiteRequest) (*Site, error)

	// Update applies patch with read-modify-write semantics
	Update(ctx context.Context, id string, patch SitePatch) (*Site, error)
}

// PageRepository defines persistence for pages. GetByID and Update return
// ErrPageNotFound when the id does not exist.
type PageRepository interface {
	// ListBySite returns every page of siteID, in no particular order
	ListBySite(ctx context.Context, siteID string) ([]*Page, error)

	// GetByID looks a page up without knowing its site
	GetByID(ctx context.Context, id string) (*Page, error)

	Create(ctx context.Context, siteID string, req CreatePageRequest) (*Page, error)

	Update(ctx context.Context, id string, patch PagePatch) (*Page, error)
}

// BlobStore defines the interface for publish destinations
type BlobStore interface {
	// Put writes an HTML document under key and returns its public URL
	Put(ctx context.Context, key string, html []byte) (string, error)

	// URL returns the public URL for key without contacting storage. It is
	// the same value Put returns for that key.
	URL(key string) (string, error)
}

// RenderFunc turns a page's editor state into an HTML document.
type RenderFunc func(editorState, siteSettings map[string]any) string

// PublishObserver receives the outcome of every publish attempt
type PublishObserver interface {
	ObservePublish(outcome string, seconds float64)
}
