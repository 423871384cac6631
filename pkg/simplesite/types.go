package simplesite

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PublishStatus is the domain type for a site's publish state.
type PublishStatus string

// Publish status constants (typed).
const (
	PublishStatusDraft     PublishStatus = "draft"
	PublishStatusPublished PublishStatus = "published"
	PublishStatusError     PublishStatus = "error"
)

// PageType tags a page. The core does not interpret it.
type PageType string

// Page type constants (typed).
const (
	PageTypePage       PageType = "page"
	PageTypeFunnelStep PageType = "funnel_step"
	PageTypeBlog       PageType = "blog"
	PageTypeSystem     PageType = "system"
)

// Defaults applied when a create request omits a field.
const (
	DefaultSiteName = "New Site"
	DefaultPageName = "New Page"
)

// Site is a tenant-owned website container.
//
// OwnerAccountID is fixed at creation and drives every authorization check.
type Site struct {
	ID              string         `json:"id"`
	OwnerAccountID  string         `json:"owner_account_id"`
	Name            string         `json:"name"`
	Slug            string         `json:"slug"`
	PrimaryDomain   *string        `json:"primary_domain"`
	DealerAccountID *string        `json:"dealer_account_id"`
	PublishStatus   PublishStatus  `json:"publish_status"`
	PublishedAt     *string        `json:"published_at"`
	Settings        map[string]any `json:"settings"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Page is a unit of content belonging to exactly one Site.
//
// EditorState is the draft. PublishedState is the editor state that was
// rendered by the last successful publish and stays nil until then.
type Page struct {
	ID                  string         `json:"id"`
	SiteID              string         `json:"site_id"`
	Name                string         `json:"name"`
	Slug                string         `json:"slug"`
	Type                PageType       `json:"type"`
	EditorState         map[string]any `json:"editor_state"`
	PublishedState      map[string]any `json:"published_state"`
	PublishedHTMLURL    *string        `json:"published_html_url"`
	LastEditorAccountID *string        `json:"last_editor_account_id"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// Now returns the current UTC time truncated to whole seconds, the
// resolution every stored timestamp uses.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// NewID generates a new entity id.
func NewID() string {
	return uuid.New().String()
}

// DeriveSlug returns the slug used for a site created without one: the first
// dash-separated segment of its id.
func DeriveSlug(id string) string {
	seg, _, _ := strings.Cut(id, "-")
	return seg
}

// NewSite builds a Site for owner from req, filling in every default. The
// returned value is not persisted.
func NewSite(owner string, req CreateSiteRequest) *Site {
	id := NewID()
	now := Now()

	site := &Site{
		ID:              id,
		OwnerAccountID:  owner,
		Name:            DefaultSiteName,
		Slug:            DeriveSlug(id),
		PrimaryDomain:   req.PrimaryDomain,
		DealerAccountID: req.DealerAccountID,
		PublishStatus:   PublishStatusDraft,
		Settings:        map[string]any{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.Name != nil {
		site.Name = *req.Name
	}
	if req.Slug != nil && *req.Slug != "" {
		site.Slug = *req.Slug
	}
	if req.Settings != nil {
		site.Settings = req.Settings
	}
	return site
}

// NewPage builds a Page under siteID from req, filling in every default.
func NewPage(siteID string, req CreatePageRequest) *Page {
	now := Now()

	page := &Page{
		ID:                  NewID(),
		SiteID:              siteID,
		Name:                DefaultPageName,
		Slug:                "",
		Type:                PageTypePage,
		EditorState:         map[string]any{},
		LastEditorAccountID: req.LastEditorAccountID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if req.Name != nil {
		page.Name = *req.Name
	}
	if req.Slug != nil {
		page.Slug = *req.Slug
	}
	if req.Type != nil {
		page.Type = *req.Type
	}
	if req.EditorState != nil {
		page.EditorState = req.EditorState
	}
	return page
}

// Apply copies every non-nil field of patch onto s and refreshes UpdatedAt.
func (s *Site) Apply(patch SitePatch) {
	if patch.Name != nil {
		s.Name = *patch.Name
	}
	if patch.Slug != nil {
		s.Slug = *patch.Slug
	}
	if patch.PrimaryDomain != nil {
		s.PrimaryDomain = patch.PrimaryDomain
	}
	if patch.DealerAccountID != nil {
		s.DealerAccountID = patch.DealerAccountID
	}
	if patch.PublishStatus != nil {
		s.PublishStatus = *patch.PublishStatus
	}
	if patch.PublishedAt != nil {
		s.PublishedAt = patch.PublishedAt
	}
	if patch.Settings != nil {
		s.Settings = patch.Settings
	}
	s.UpdatedAt = Now()
}

// Apply copies every non-nil field of patch onto p and refreshes UpdatedAt.
func (p *Page) Apply(patch PagePatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Slug != nil {
		p.Slug = *patch.Slug
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.EditorState != nil {
		p.EditorState = patch.EditorState
	}
	if patch.PublishedState != nil {
		p.PublishedState = patch.PublishedState
	}
	if patch.PublishedHTMLURL != nil {
		p.PublishedHTMLURL = patch.PublishedHTMLURL
	}
	if patch.LastEditorAccountID != nil {
		p.LastEditorAccountID = patch.LastEditorAccountID
	}
	p.UpdatedAt = Now()
}

// Clone returns a deep copy of s.
func (s *Site) Clone() *Site {
	c := *s
	c.PrimaryDomain = cloneString(s.PrimaryDomain)
	c.DealerAccountID = cloneString(s.DealerAccountID)
	c.PublishedAt = cloneString(s.PublishedAt)
	c.Settings = CloneMap(s.Settings)
	return &c
}

// Clone returns a deep copy of p.
func (p *Page) Clone() *Page {
	c := *p
	c.EditorState = CloneMap(p.EditorState)
	c.PublishedState = CloneMap(p.PublishedState)
	c.PublishedHTMLURL = cloneString(p.PublishedHTMLURL)
	c.LastEditorAccountID = cloneString(p.LastEditorAccountID)
	return &c
}

// CloneMap deep-copies a JSON-shaped map. Nil stays nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
