package memory

import (
	"context"
	"sync"

	"github.com/tendant/simple-site/pkg/simplesite"
)

// SiteRepository implements simplesite.SiteRepository using in-memory storage.
// Nothing survives the process.
type SiteRepository struct {
	mu    sync.RWMutex
	sites map[string]*simplesite.Site
}

// NewSiteRepository creates a new in-memory site repository
func NewSiteRepository() *SiteRepository {
	return &SiteRepository{
		sites: make(map[string]*simplesite.Site),
	}
}

func (r *SiteRepository) ListByOwner(ctx context.Context, ownerAccountID string) ([]*simplesite.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*simplesite.Site{}
	for _, site := range r.sites {
		if site.OwnerAccountID == ownerAccountID {
			result = append(result, site.Clone())
		}
	}
	return result, nil
}

func (r *SiteRepository) GetByID(ctx context.Context, id string) (*simplesite.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	site, exists := r.sites[id]
	if !exists {
		return nil, simplesite.ErrSiteNotFound
	}
	// Return a copy to prevent external modifications
	return site.Clone(), nil
}

func (r *SiteRepository) Create(ctx context.Context, ownerAccountID string, req simplesite.CreateSiteRequest) (*simplesite.Site, error) {
	site := simplesite.NewSite(ownerAccountID, req)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sites[site.ID] = site.Clone()
	return site, nil
}

func (r *SiteRepository) Update(ctx context.Context, id string, patch simplesite.SitePatch) (*simplesite.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	site, exists := r.sites[id]
	if !exists {
		return nil, simplesite.ErrSiteNotFound
	}

	updated := site.Clone()
	updated.Apply(patch)
	r.sites[id] = updated.Clone()
	return updated, nil
}

// PageRepository implements simplesite.PageRepository using in-memory storage
type PageRepository struct {
	mu     sync.RWMutex
	pages  map[string]*simplesite.Page
	bySite map[string][]string // site_id -> []page_id
}

// NewPageRepository creates a new in-memory page repository
func NewPageRepository() *PageRepository {
	return &PageRepository{
		pages:  make(map[string]*simplesite.Page),
		bySite: make(map[string][]string),
	}
}

func (r *PageRepository) ListBySite(ctx context.Context, siteID string) ([]*simplesite.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*simplesite.Page{}
	for _, id := range r.bySite[siteID] {
		result = append(result, r.pages[id].Clone())
	}
	return result, nil
}

func (r *PageRepository) GetByID(ctx context.Context, id string) (*simplesite.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page, exists := r.pages[id]
	if !exists {
		return nil, simplesite.ErrPageNotFound
	}
	return page.Clone(), nil
}

func (r *PageRepository) Create(ctx context.Context, siteID string, req simplesite.CreatePageRequest) (*simplesite.Page, error) {
	page := simplesite.NewPage(siteID, req)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pages[page.ID] = page.Clone()
	r.bySite[siteID] = append(r.bySite[siteID], page.ID)
	return page, nil
}

func (r *PageRepository) Update(ctx context.Context, id string, patch simplesite.PagePatch) (*simplesite.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	page, exists := r.pages[id]
	if !exists {
		return nil, simplesite.ErrPageNotFound
	}

	updated := page.Clone()
	updated.Apply(patch)
	r.pages[id] = updated.Clone()
	return updated, nil
}
