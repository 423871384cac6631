package simplesite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tendant/simple-site/pkg/simplesite/render"
	"go.uber.org/zap"
)

// service implements the Service interface
type service struct {
	sites    SiteRepository
	pages    PageRepository
	store    BlobStore
	render   RenderFunc
	observer PublishObserver
	logger   *zap.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithSiteRepository sets the site repository
func WithSiteRepository(repo SiteRepository) Option {
	return func(s *service) {
		s.sites = repo
	}
}

// WithPageRepository sets the page repository
func WithPageRepository(repo PageRepository) Option {
	return func(s *service) {
		s.pages = repo
	}
}

// WithBlobStore sets the publish destination
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithRenderer replaces the default HTML renderer
func WithRenderer(fn RenderFunc) Option {
	return func(s *service) {
		s.render = fn
	}
}

// WithPublishObserver sets the observer notified after each publish attempt
func WithPublishObserver(o PublishObserver) Option {
	return func(s *service) {
		s.observer = o
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		render:   render.Render,
		observer: NoopPublishObserver{},
		logger:   zap.NewNop(),
	}

	for _, option := range options {
		option(s)
	}

	if s.sites == nil {
		return nil, errors.New("site repository is required")
	}
	if s.pages == nil {
		return nil, errors.New("page repository is required")
	}
	if s.store == nil {
		return nil, errors.New("blob store is required")
	}

	return s, nil
}

// Site operations

func (s *service) ListSites(ctx context.Context, accountID string) ([]*Site, error) {
	sites, err := s.sites.ListByOwner(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	if sites == nil {
		sites = []*Site{}
	}
	return sites, nil
}

func (s *service) CreateSite(ctx context.Context, accountID string, req CreateSiteRequest) (*Site, error) {
	site, err := s.sites.Create(ctx, accountID, req)
	if err != nil {
		return nil, fmt.Errorf("create site: %w", err)
	}
	return site, nil
}

func (s *service) GetSite(ctx context.Context, accountID, siteID string) (*Site, error) {
	return s.ownedSite(ctx, accountID, siteID)
}

func (s *service) UpdateSite(ctx context.Context, accountID, siteID string, patch SitePatch) (*Site, error) {
	if _, err := s.ownedSite(ctx, accountID, siteID); err != nil {
		return nil, err
	}
	site, err := s.sites.Update(ctx, siteID, patch)
	if err != nil {
		return nil, fmt.Errorf("update site: %w", err)
	}
	return site, nil
}

// Page operations

func (s *service) ListPages(ctx context.Context, accountID, siteID string) ([]*Page, error) {
	if _, err := s.ownedSite(ctx, accountID, siteID); err != nil {
		return nil, err
	}
	pages, err := s.pages.ListBySite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if pages == nil {
		pages = []*Page{}
	}
	return pages, nil
}

func (s *service) CreatePage(ctx context.Context, accountID, siteID string, req CreatePageRequest) (*Page, error) {
	if _, err := s.ownedSite(ctx, accountID, siteID); err != nil {
		return nil, err
	}
	page, err := s.pages.Create(ctx, siteID, req)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return page, nil
}

func (s *service) GetPage(ctx context.Context, accountID, pageID string) (*Page, error) {
	page, _, err := s.ownedPage(ctx, accountID, pageID)
	return page, err
}

func (s *service) UpdatePage(ctx context.Context, accountID, pageID string, patch PagePatch) (*Page, error) {
	if _, _, err := s.ownedPage(ctx, accountID, pageID); err != nil {
		return nil, err
	}

	editor := accountID
	patch.LastEditorAccountID = &editor

	page, err := s.pages.Update(ctx, pageID, patch)
	if err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	return page, nil
}

func (s *service) PublishPage(ctx context.Context, accountID, pageID string) (*PublishResult, error) {
	start := time.Now()

	result, err := s.publish(ctx, accountID, pageID)

	outcome := "success"
	switch {
	case IsNotFound(err):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
		s.logger.Error("publish failed", zap.String("page_id", pageID), zap.Error(err))
	default:
		s.logger.Info("page published",
			zap.String("page_id", pageID),
			zap.String("url", result.PublishedHTMLURL))
	}
	s.observer.ObservePublish(outcome, time.Since(start).Seconds())

	return result, err
}

func (s *service) publish(ctx context.Context, accountID, pageID string) (*PublishResult, error) {
	page, site, err := s.ownedPage(ctx, accountID, pageID)
	if err != nil {
		return nil, err
	}

	state := page.EditorState
	if state == nil {
		state = map[string]any{}
	}

	html := s.render(state, site.Settings)
	key := PublishKey(site.Slug, page.Slug)

	url, err := s.store.Put(ctx, key, []byte(html))
	if err != nil {
		return nil, &PublishError{PageID: pageID, Op: "upload", Err: err}
	}

	updated, err := s.pages.Update(ctx, page.ID, PagePatch{
		PublishedState:   state,
		PublishedHTMLURL: &url,
	})
	if err != nil {
		return nil, &PublishError{PageID: pageID, Op: "record", Err: err}
	}

	return &PublishResult{PublishedHTMLURL: url, Page: updated}, nil
}

// PublishKey returns the storage key a page is published under. A page slug
// is trimmed of surrounding slashes; an empty result is the homepage and maps
// to "index".
func PublishKey(siteSlug, pageSlug string) string {
	fileSlug := strings.Trim(pageSlug, "/")
	if fileSlug == "" {
		fileSlug = "index"
	}
	return fmt.Sprintf("sites/%s/%s.html", siteSlug, fileSlug)
}

// ownedSite loads a site and hides it unless accountID owns it.
func (s *service) ownedSite(ctx context.Context, accountID, siteID string) (*Site, error) {
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, ErrSiteNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, fmt.Errorf("get site: %w", err)
	}
	if site.OwnerAccountID != accountID {
		return nil, ErrSiteNotFound
	}
	return site, nil
}

// ownedPage loads a page and its site and hides both unless accountID owns
// the site. A missing parent site reads the same as a missing page.
func (s *service) ownedPage(ctx context.Context, accountID, pageID string) (*Page, *Site, error) {
	page, err := s.pages.GetByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return nil, nil, ErrPageNotFound
		}
		return nil, nil, fmt.Errorf("get page: %w", err)
	}

	site, err := s.ownedSite(ctx, accountID, page.SiteID)
	if err != nil {
		if errors.Is(err, ErrSiteNotFound) {
			return nil, nil, ErrPageNotFound
		}
		return nil, nil, err
	}
	return page, site, nil
}
