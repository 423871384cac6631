package simplesite

import (
	"context"
)

// Service is the account-scoped API of the site builder. Every method takes
// the caller's account id; anything the caller does not own is reported as
// ErrSiteNotFound or ErrPageNotFound, exactly as if it did not exist.
type Service interface {
	// Site operations
	ListSites(ctx context.Context, accountID string) ([]*Site, error)
	CreateSite(ctx context.Context, accountID string, req CreateSiteRequest) (*Site, error)
	GetSite(ctx context.Context, accountID, siteID string) (*Site, error)
	UpdateSite(ctx context.Context, accountID, siteID string, patch SitePatch) (*Site, error)

	// Page operations
	ListPages(ctx context.Context, accountID, siteID string) ([]*Page, error)
	CreatePage(ctx context.Context, accountID, siteID string, req CreatePageRequest) (*Page, error)
	GetPage(ctx context.Context, accountID, pageID string) (*Page, error)

	// UpdatePage records accountID as the page's last editor
	UpdatePage(ctx context.Context, accountID, pageID string, patch PagePatch) (*Page, error)

	// PublishPage renders the page's editor state, uploads it and records
	// the snapshot and URL on the page
	PublishPage(ctx context.Context, accountID, pageID string) (*PublishResult, error)
}
