// Package repotest holds the behaviour every SiteRepository and
// PageRepository implementation must share. Each backend's tests call these
// against a fresh repository.
package repotest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-site/pkg/simplesite"
)

func ptr[T any](v T) *T { return &v }

// RunSiteRepositoryTests exercises the SiteRepository contract.
func RunSiteRepositoryTests(t *testing.T, repo simplesite.SiteRepository) {
	ctx := context.Background()

	t.Run("CreateDefaults", func(t *testing.T) {
		owner := "acct-" + uuid.NewString()
		site, err := repo.Create(ctx, owner, simplesite.CreateSiteRequest{})
		require.NoError(t, err)

		assert.NotEmpty(t, site.ID)
		assert.Equal(t, owner, site.OwnerAccountID)
		assert.Equal(t, simplesite.DefaultSiteName, site.Name)
		assert.Equal(t, strings.Split(site.ID, "-")[0], site.Slug)
		assert.NotEmpty(t, site.Slug)
		assert.Equal(t, simplesite.PublishStatusDraft, site.PublishStatus)
		assert.NotNil(t, site.Settings)
		assert.Empty(t, site.Settings)
		assert.Nil(t, site.PrimaryDomain)
		assert.Nil(t, site.PublishedAt)
		assert.False(t, site.CreatedAt.IsZero())
		assert.True(t, site.CreatedAt.Equal(site.UpdatedAt))
	})

	t.Run("CreateExplicitSlugAndFields", func(t *testing.T) {
		owner := "acct-" + uuid.NewString()
		site, err := repo.Create(ctx, owner, simplesite.CreateSiteRequest{
			Name:            ptr("Test"),
			Slug:            ptr("testsite"),
			PrimaryDomain:   ptr("example.com"),
			DealerAccountID: ptr("dealer-1"),
			Settings:        map[string]any{"theme": "dark"},
		})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, site.ID)
		require.NoError(t, err)
		assert.Equal(t, "Test", got.Name)
		assert.Equal(t, "testsite", got.Slug)
		require.NotNil(t, got.PrimaryDomain)
		assert.Equal(t, "example.com", *got.PrimaryDomain)
		require.NotNil(t, got.DealerAccountID)
		assert.Equal(t, "dealer-1", *got.DealerAccountID)
		assert.Equal(t, "dark", got.Settings["theme"])
	})

	t.Run("EmptySlugIsDerived", func(t *testing.T) {
		site, err := repo.Create(ctx, "acct-"+uuid.NewString(), simplesite.CreateSiteRequest{Slug: ptr("")})
		require.NoError(t, err)
		assert.Equal(t, simplesite.DeriveSlug(site.ID), site.Slug)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		site, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, simplesite.ErrSiteNotFound)
		assert.Nil(t, site)
	})

	t.Run("ListByOwner", func(t *testing.T) {
		owner := "acct-" + uuid.NewString()
		other := "acct-" + uuid.NewString()

		a, err := repo.Create(ctx, owner, simplesite.CreateSiteRequest{Name: ptr("A")})
		require.NoError(t, err)
		b, err := repo.Create(ctx, owner, simplesite.CreateSiteRequest{Name: ptr("B")})
		require.NoError(t, err)
		_, err = repo.Create(ctx, other, simplesite.CreateSiteRequest{Name: ptr("C")})
		require.NoError(t, err)

		sites, err := repo.ListByOwner(ctx, owner)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{a.ID, b.ID}, siteIDs(sites))

		none, err := repo.ListByOwner(ctx, "acct-"+uuid.NewString())
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("UpdateAppliesPatch", func(t *testing.T) {
		site, err := repo.Create(ctx, "acct-"+uuid.NewString(), simplesite.CreateSiteRequest{Name: ptr("Before")})
		require.NoError(t, err)

		status := simplesite.PublishStatusError
		updated, err := repo.Update(ctx, site.ID, simplesite.SitePatch{
			Name:          ptr("After"),
			PublishStatus: &status,
			Settings:      map[string]any{"font": "serif"},
		})
		require.NoError(t, err)
		assert.Equal(t, "After", updated.Name)
		assert.Equal(t, simplesite.PublishStatusError, updated.PublishStatus)

		got, err := repo.GetByID(ctx, site.ID)
		require.NoError(t, err)
		assert.Equal(t, "After", got.Name)
		assert.Equal(t, site.Slug, got.Slug)
		assert.Equal(t, "serif", got.Settings["font"])
		assert.Equal(t, site.OwnerAccountID, got.OwnerAccountID)
		assert.True(t, site.CreatedAt.Equal(got.CreatedAt))
		assert.False(t, got.UpdatedAt.Before(site.UpdatedAt))
	})

	t.Run("UpdateEmptyPatchKeepsFields", func(t *testing.T) {
		site, err := repo.Create(ctx, "acct-"+uuid.NewString(), simplesite.CreateSiteRequest{
			Name:          ptr("Keep"),
			PrimaryDomain: ptr("keep.example.com"),
		})
		require.NoError(t, err)

		_, err = repo.Update(ctx, site.ID, simplesite.SitePatch{})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, site.ID)
		require.NoError(t, err)
		assert.Equal(t, "Keep", got.Name)
		require.NotNil(t, got.PrimaryDomain)
		assert.Equal(t, "keep.example.com", *got.PrimaryDomain)
	})

	t.Run("UpdateRefreshesUpdatedAt", func(t *testing.T) {
		site, err := repo.Create(ctx, "acct-"+uuid.NewString(), simplesite.CreateSiteRequest{})
		require.NoError(t, err)

		time.Sleep(1100 * time.Millisecond)
		updated, err := repo.Update(ctx, site.ID, simplesite.SitePatch{})
		require.NoError(t, err)
		assert.True(t, updated.UpdatedAt.After(site.UpdatedAt))
		assert.True(t, updated.CreatedAt.Equal(site.CreatedAt))
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		site, err := repo.Update(ctx, uuid.NewString(), simplesite.SitePatch{Name: ptr("x")})
		assert.ErrorIs(t, err, simplesite.ErrSiteNotFound)
		assert.Nil(t, site)
	})
}

// RunPageRepositoryTests exercises the PageRepository contract.
func RunPageRepositoryTests(t *testing.T, repo simplesite.PageRepository) {
	ctx := context.Background()

	t.Run("CreateDefaults", func(t *testing.T) {
		siteID := uuid.NewString()
		page, err := repo.Create(ctx, siteID, simplesite.CreatePageRequest{})
		require.NoError(t, err)

		assert.NotEmpty(t, page.ID)
		assert.Equal(t, siteID, page.SiteID)
		assert.Equal(t, simplesite.DefaultPageName, page.Name)
		assert.Equal(t, "", page.Slug)
		assert.Equal(t, simplesite.PageTypePage, page.Type)
		assert.NotNil(t, page.EditorState)
		assert.Empty(t, page.EditorState)
		assert.Nil(t, page.PublishedState)
		assert.Nil(t, page.PublishedHTMLURL)
		assert.Nil(t, page.LastEditorAccountID)
	})

	t.Run("CreateAndGet", func(t *testing.T) {
		siteID := uuid.NewString()
		blog := simplesite.PageTypeBlog
		page, err := repo.Create(ctx, siteID, simplesite.CreatePageRequest{
			Name:        ptr("About"),
			Slug:        ptr("about/"),
			Type:        &blog,
			EditorState: map[string]any{"title": "Hi", "raw_html": "<p>ok</p>"},
		})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, page.ID)
		require.NoError(t, err)
		assert.Equal(t, page.ID, got.ID)
		assert.Equal(t, siteID, got.SiteID)
		assert.Equal(t, "About", got.Name)
		assert.Equal(t, "about/", got.Slug)
		assert.Equal(t, simplesite.PageTypeBlog, got.Type)
		assert.Equal(t, "<p>ok</p>", got.EditorState["raw_html"])
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		page, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, simplesite.ErrPageNotFound)
		assert.Nil(t, page)
	})

	t.Run("ListBySite", func(t *testing.T) {
		siteID := uuid.NewString()
		a, err := repo.Create(ctx, siteID, simplesite.CreatePageRequest{Name: ptr("A")})
		require.NoError(t, err)
		b, err := repo.Create(ctx, siteID, simplesite.CreatePageRequest{Name: ptr("B")})
		require.NoError(t, err)
		_, err = repo.Create(ctx, uuid.NewString(), simplesite.CreatePageRequest{Name: ptr("C")})
		require.NoError(t, err)

		pages, err := repo.ListBySite(ctx, siteID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{a.ID, b.ID}, pageIDs(pages))

		none, err := repo.ListBySite(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("UpdatePublishFields", func(t *testing.T) {
		siteID := uuid.NewString()
		state := map[string]any{"title": "Hi", "sections": []any{map[string]any{"blocks": []any{}}}}
		page, err := repo.Create(ctx, siteID, simplesite.CreatePageRequest{EditorState: state})
		require.NoError(t, err)

		url := "https://bucket.s3.amazonaws.com/sites/x/index.html"
		_, err = repo.Update(ctx, page.ID, simplesite.PagePatch{
			PublishedState:      state,
			PublishedHTMLURL:    &url,
			LastEditorAccountID: ptr("acct-1"),
		})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, page.ID)
		require.NoError(t, err)
		assert.Equal(t, state, got.PublishedState)
		require.NotNil(t, got.PublishedHTMLURL)
		assert.Equal(t, url, *got.PublishedHTMLURL)
		require.NotNil(t, got.LastEditorAccountID)
		assert.Equal(t, "acct-1", *got.LastEditorAccountID)
		assert.Equal(t, siteID, got.SiteID)
		assert.True(t, page.CreatedAt.Equal(got.CreatedAt))

		listed, err := repo.ListBySite(ctx, siteID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		require.NotNil(t, listed[0].PublishedHTMLURL)
		assert.Equal(t, url, *listed[0].PublishedHTMLURL)
	})

	t.Run("UpdateNilFieldsIgnored", func(t *testing.T) {
		page, err := repo.Create(ctx, uuid.NewString(), simplesite.CreatePageRequest{
			Name:        ptr("Home"),
			EditorState: map[string]any{"title": "Keep"},
		})
		require.NoError(t, err)

		_, err = repo.Update(ctx, page.ID, simplesite.PagePatch{Slug: ptr("home")})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, page.ID)
		require.NoError(t, err)
		assert.Equal(t, "Home", got.Name)
		assert.Equal(t, "home", got.Slug)
		assert.Equal(t, "Keep", got.EditorState["title"])
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		page, err := repo.Update(ctx, uuid.NewString(), simplesite.PagePatch{Name: ptr("x")})
		assert.ErrorIs(t, err, simplesite.ErrPageNotFound)
		assert.Nil(t, page)
	})
}

func siteIDs(sites []*simplesite.Site) []string {
	ids := make([]string, 0, len(sites))
	for _, s := range sites {
		ids = append(ids, s.ID)
	}
	return ids
}

func pageIDs(pages []*simplesite.Page) []string {
	ids := make([]string, 0, len(pages))
	for _, p := range pages {
		ids = append(ids, p.ID)
	}
	return ids
}
