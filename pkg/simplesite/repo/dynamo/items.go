package dynamo

import (
	"fmt"
	"time"

	"github.com/tendant/simple-site/pkg/simplesite"
)

const timeLayout = time.RFC3339

type siteItem struct {
	PK              string         `dynamodbav:"pk"`
	SK              string         `dynamodbav:"sk"`
	GSI1PK          string         `dynamodbav:"gsi1pk"`
	GSI1SK          string         `dynamodbav:"gsi1sk"`
	SiteID          string         `dynamodbav:"site_id"`
	OwnerAccountID  string         `dynamodbav:"owner_account_id"`
	DealerAccountID *string        `dynamodbav:"dealer_account_id"`
	Name            string         `dynamodbav:"name"`
	Slug            string         `dynamodbav:"slug"`
	PrimaryDomain   *string        `dynamodbav:"primary_domain"`
	PublishStatus   string         `dynamodbav:"publish_status"`
	PublishedAt     *string        `dynamodbav:"published_at"`
	Settings        map[string]any `dynamodbav:"settings"`
	CreatedAt       string         `dynamodbav:"created_at"`
	UpdatedAt       string         `dynamodbav:"updated_at"`
}

type pageItem struct {
	PK                  string         `dynamodbav:"pk"`
	SK                  string         `dynamodbav:"sk"`
	GSI1PK              string         `dynamodbav:"gsi1pk"`
	GSI1SK              string         `dynamodbav:"gsi1sk"`
	PageID              string         `dynamodbav:"page_id"`
	SiteID              string         `dynamodbav:"site_id"`
	Name                string         `dynamodbav:"name"`
	Slug                string         `dynamodbav:"slug"`
	Type                string         `dynamodbav:"type"`
	EditorState         map[string]any `dynamodbav:"editor_state"`
	PublishedState      map[string]any `dynamodbav:"published_state"`
	PublishedHTMLURL    *string        `dynamodbav:"published_html_url"`
	LastEditorAccountID *string        `dynamodbav:"last_editor_account_id"`
	CreatedAt           string         `dynamodbav:"created_at"`
	UpdatedAt           string         `dynamodbav:"updated_at"`
}

func siteKey(siteID string) string {
	return "SITE#" + siteID
}

func ownerKey(owner string) string {
	return "OWNER#" + owner
}

func pageKey(pageID string) string {
	return "PAGE#" + pageID
}

const metaKey = "META"

func siteToItem(s *simplesite.Site) siteItem {
	settings := s.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return siteItem{
		PK:              siteKey(s.ID),
		SK:              metaKey,
		GSI1PK:          ownerKey(s.OwnerAccountID),
		GSI1SK:          siteKey(s.ID),
		SiteID:          s.ID,
		OwnerAccountID:  s.OwnerAccountID,
		DealerAccountID: s.DealerAccountID,
		Name:            s.Name,
		Slug:            s.Slug,
		PrimaryDomain:   s.PrimaryDomain,
		PublishStatus:   string(s.PublishStatus),
		PublishedAt:     s.PublishedAt,
		Settings:        settings,
		CreatedAt:       s.CreatedAt.Format(timeLayout),
		UpdatedAt:       s.UpdatedAt.Format(timeLayout),
	}
}

func itemToSite(it siteItem) (*simplesite.Site, error) {
	created, err := time.Parse(timeLayout, it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("site %s: bad created_at: %w", it.SiteID, err)
	}
	updated, err := time.Parse(timeLayout, it.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("site %s: bad updated_at: %w", it.SiteID, err)
	}

	site := &simplesite.Site{
		ID:              it.SiteID,
		OwnerAccountID:  it.OwnerAccountID,
		Name:            it.Name,
		Slug:            it.Slug,
		PrimaryDomain:   it.PrimaryDomain,
		DealerAccountID: it.DealerAccountID,
		PublishStatus:   simplesite.PublishStatus(it.PublishStatus),
		PublishedAt:     it.PublishedAt,
		Settings:        it.Settings,
		CreatedAt:       created,
		UpdatedAt:       updated,
	}
	if site.PublishStatus == "" {
		site.PublishStatus = simplesite.PublishStatusDraft
	}
	if site.Settings == nil {
		site.Settings = map[string]any{}
	}
	return site, nil
}

func pageToItem(p *simplesite.Page) pageItem {
	state := p.EditorState
	if state == nil {
		state = map[string]any{}
	}
	return pageItem{
		PK:                  siteKey(p.SiteID),
		SK:                  pageKey(p.ID),
		GSI1PK:              pageKey(p.ID),
		GSI1SK:              metaKey,
		PageID:              p.ID,
		SiteID:              p.SiteID,
		Name:                p.Name,
		Slug:                p.Slug,
		Type:                string(p.Type),
		EditorState:         state,
		PublishedState:      p.PublishedState,
		PublishedHTMLURL:    p.PublishedHTMLURL,
		LastEditorAccountID: p.LastEditorAccountID,
		CreatedAt:           p.CreatedAt.Format(timeLayout),
		UpdatedAt:           p.UpdatedAt.Format(timeLayout),
	}
}

func itemToPage(it pageItem) (*simplesite.Page, error) {
	created, err := time.Parse(timeLayout, it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("page %s: bad created_at: %w", it.PageID, err)
	}
	updated, err := time.Parse(timeLayout, it.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("page %s: bad updated_at: %w", it.PageID, err)
	}

	page := &simplesite.Page{
		ID:                  it.PageID,
		SiteID:              it.SiteID,
		Name:                it.Name,
		Slug:                it.Slug,
		Type:                simplesite.PageType(it.Type),
		EditorState:         it.EditorState,
		PublishedState:      it.PublishedState,
		PublishedHTMLURL:    it.PublishedHTMLURL,
		LastEditorAccountID: it.LastEditorAccountID,
		CreatedAt:           created,
		UpdatedAt:           updated,
	}
	if page.Type == "" {
		page.Type = simplesite.PageTypePage
	}
	if page.EditorState == nil {
		page.EditorState = map[string]any{}
	}
	return page, nil
}
