package simplesite_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-site/pkg/simplesite"
	"github.com/tendant/simple-site/pkg/simplesite/repo/memory"
	memorystorage "github.com/tendant/simple-site/pkg/simplesite/storage/memory"
	"github.com/tendant/simple-site/pkg/simplesite/storage/s3"
)

func ptr[T any](v T) *T { return &v }

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObservePublish(outcome string, seconds float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

type fixture struct {
	svc      simplesite.Service
	store    *memorystorage.Backend
	pages    *memory.PageRepository
	observer *recordingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memorystorage.New(),
		pages:    memory.NewPageRepository(),
		observer: &recordingObserver{},
	}
	svc, err := simplesite.New(
		simplesite.WithSiteRepository(memory.NewSiteRepository()),
		simplesite.WithPageRepository(f.pages),
		simplesite.WithBlobStore(f.store),
		simplesite.WithPublishObserver(f.observer),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := simplesite.New()
	assert.Error(t, err)

	_, err = simplesite.New(simplesite.WithSiteRepository(memory.NewSiteRepository()))
	assert.Error(t, err)

	_, err = simplesite.New(
		simplesite.WithSiteRepository(memory.NewSiteRepository()),
		simplesite.WithPageRepository(memory.NewPageRepository()),
	)
	assert.Error(t, err)
}

func TestService_SiteLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sites, err := f.svc.ListSites(ctx, "acct-1")
	require.NoError(t, err)
	assert.NotNil(t, sites)
	assert.Empty(t, sites)

	site, err := f.svc.CreateSite(ctx, "acct-1", simplesite.CreateSiteRequest{Name: ptr("Test")})
	require.NoError(t, err)
	assert.Equal(t, "acct-1", site.OwnerAccountID)
	assert.Equal(t, "Test", site.Name)
	assert.Equal(t, strings.Split(site.ID, "-")[0], site.Slug)

	got, err := f.svc.GetSite(ctx, "acct-1", site.ID)
	require.NoError(t, err)
	assert.Equal(t, site.ID, got.ID)

	updated, err := f.svc.UpdateSite(ctx, "acct-1", site.ID, simplesite.SitePatch{Name: ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	sites, err = f.svc.ListSites(ctx, "acct-1")
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "Renamed", sites[0].Name)
}

func TestService_OwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	site, err := f.svc.CreateSite(ctx, "owner", simplesite.CreateSiteRequest{})
	require.NoError(t, err)
	page, err := f.svc.CreatePage(ctx, "owner", site.ID, simplesite.CreatePageRequest{})
	require.NoError(t, err)

	t.Run("Sites", func(t *testing.T) {
		_, err := f.svc.GetSite(ctx, "intruder", site.ID)
		assert.ErrorIs(t, err, simplesite.ErrSiteNotFound)

		_, err = f.svc.UpdateSite(ctx, "intruder", site.ID, simplesite.SitePatch{Name: ptr("pwned")})
		assert.ErrorIs(t, err, simplesite.ErrSiteNotFound)

		_, err = f.svc.ListPages(ctx, "intruder", site.ID)
		assert.ErrorIs(t, err, simplesite.ErrSiteNotFound)

		_, err = f.svc.CreatePage(ctx, "intruder", site.ID, simplesite.CreatePageRequest{})
		assert.ErrorIs(t, err, simplesite.ErrSiteNotFound)

		sites, err := f.svc.ListSites(ctx, "intruder")
		require.NoError(t, err)
		assert.Empty(t, sites)
	})

	t.Run("Pages", func(t *testing.T) {
		_, err := f.svc.GetPage(ctx, "intruder", page.ID)
		assert.ErrorIs(t, err, simplesite.ErrPageNotFound)

		_, err = f.svc.UpdatePage(ctx, "intruder", page.ID, simplesite.PagePatch{Name: ptr("pwned")})
		assert.ErrorIs(t, err, simplesite.ErrPageNotFound)

		_, err = f.svc.PublishPage(ctx, "intruder", page.ID)
		assert.ErrorIs(t, err, simplesite.ErrPageNotFound)
	})

	t.Run("NothingChanged", func(t *testing.T) {
		got, err := f.svc.GetSite(ctx, "owner", site.ID)
		require.NoError(t, err)
		assert.Equal(t, simplesite.DefaultSiteName, got.Name)

		gotPage, err := f.svc.GetPage(ctx, "owner", page.ID)
		require.NoError(t, err)
		assert.Equal(t, simplesite.DefaultPageName, gotPage.Name)
		assert.Nil(t, gotPage.PublishedHTMLURL)
		assert.Empty(t, f.store.Keys())
	})
}

func TestService_MissingEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetSite(ctx, "acct", "nope")
	assert.ErrorIs(t, err, simplesite.ErrSiteNotFound)

	_, err = f.svc.GetPage(ctx, "acct", "nope")
	assert.ErrorIs(t, err, simplesite.ErrPageNotFound)

	_, err = f.svc.PublishPage(ctx, "acct", "nope")
	assert.ErrorIs(t, err, simplesite.ErrPageNotFound)
	assert.True(t, simplesite.IsNotFound(err))
}

func TestService_OrphanPageReadsAsMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A page whose site does not exist is visible to no one.
	page, err := f.pages.Create(ctx, "ghost-site", simplesite.CreatePageRequest{})
	require.NoError(t, err)

	_, err = f.svc.GetPage(ctx, "acct", page.ID)
	assert.ErrorIs(t, err, simplesite.ErrPageNotFound)
}

func TestService_UpdatePageSetsLastEditor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	site, err := f.svc.CreateSite(ctx, "acct-1", simplesite.CreateSiteRequest{})
	require.NoError(t, err)
	page, err := f.svc.CreatePage(ctx, "acct-1", site.ID, simplesite.CreatePageRequest{})
	require.NoError(t, err)

	updated, err := f.svc.UpdatePage(ctx, "acct-1", page.ID, simplesite.PagePatch{
		EditorState:         map[string]any{"title": "Hello"},
		LastEditorAccountID: ptr("someone-else"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.LastEditorAccountID)
	assert.Equal(t, "acct-1", *updated.LastEditorAccountID)
	assert.Equal(t, "Hello", updated.EditorState["title"])
	assert.Equal(t, site.ID, updated.SiteID)
}

func TestService_PublishPage(t *testing.T) {
	ctx := context.Background()

	t.Run("RawHTMLToIndex", func(t *testing.T) {
		f := newFixture(t)
		site, err := f.svc.CreateSite(ctx, "acct-1", simplesite.CreateSiteRequest{Slug: ptr("testsite")})
		require.NoError(t, err)
		state := map[string]any{"raw_html": "<h1>Hello</h1>"}
		page, err := f.svc.CreatePage(ctx, "acct-1", site.ID, simplesite.CreatePageRequest{EditorState: state})
		require.NoError(t, err)

		result, err := f.svc.PublishPage(ctx, "acct-1", page.ID)
		require.NoError(t, err)
		assert.Equal(t, "memory://published/sites/testsite/index.html", result.PublishedHTMLURL)
		require.NotNil(t, result.Page.PublishedHTMLURL)
		assert.Equal(t, result.PublishedHTMLURL, *result.Page.PublishedHTMLURL)
		assert.Equal(t, state, result.Page.PublishedState)

		obj, err := f.store.Get("sites/testsite/index.html")
		require.NoError(t, err)
		assert.Contains(t, string(obj.Body), "<h1>Hello</h1>")
		assert.Equal(t, "text/html; charset=utf-8", obj.ContentType)

		stored, err := f.svc.GetPage(ctx, "acct-1", page.ID)
		require.NoError(t, err)
		assert.Equal(t, state, stored.PublishedState)
		assert.Equal(t, []string{"success"}, f.observer.outcomes)
	})

	t.Run("SlugTrimmed", func(t *testing.T) {
		f := newFixture(t)
		site, err := f.svc.CreateSite(ctx, "acct-1", simplesite.CreateSiteRequest{Slug: ptr("s")})
		require.NoError(t, err)
		page, err := f.svc.CreatePage(ctx, "acct-1", site.ID, simplesite.CreatePageRequest{Slug: ptr("about/")})
		require.NoError(t, err)

		result, err := f.svc.PublishPage(ctx, "acct-1", page.ID)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(result.PublishedHTMLURL, "/sites/s/about.html"))
	})

	t.Run("EmptyPage", func(t *testing.T) {
		f := newFixture(t)
		site, err := f.svc.CreateSite(ctx, "acct-1", simplesite.CreateSiteRequest{})
		require.NoError(t, err)
		page, err := f.svc.CreatePage(ctx, "acct-1", site.ID, simplesite.CreatePageRequest{})
		require.NoError(t, err)

		_, err = f.svc.PublishPage(ctx, "acct-1", page.ID)
		require.NoError(t, err)

		obj, err := f.store.Get("sites/" + site.Slug + "/index.html")
		require.NoError(t, err)
		assert.Contains(t, string(obj.Body), "<p>Empty page (no blocks yet)</p>")
		assert.Contains(t, string(obj.Body), "<title>Failure Guru Site</title>")
	})

	t.Run("Idempotent", func(t *testing.T) {
		f := newFixture(t)
		site, err := f.svc.CreateSite(ctx, "acct-1", simplesite.CreateSiteRequest{})
		require.NoError(t, err)
		page, err := f.svc.CreatePage(ctx, "acct-1", site.ID, simplesite.CreatePageRequest{
			EditorState: map[string]any{"title": "T"},
		})
		require.NoError(t, err)

		first, err := f.svc.PublishPage(ctx, "acct-1", page.ID)
		require.NoError(t, err)
		body1, err := f.store.Get("sites/" + site.Slug + "/index.html")
		require.NoError(t, err)

		second, err := f.svc.PublishPage(ctx, "acct-1", page.ID)
		require.NoError(t, err)
		body2, err := f.store.Get("sites/" + site.Slug + "/index.html")
		require.NoError(t, err)

		assert.Equal(t, first.PublishedHTMLURL, second.PublishedHTMLURL)
		assert.Equal(t, body1.Body, body2.Body)
		assert.Len(t, f.store.Keys(), 1)
	})

	t.Run("SnapshotIsIndependentOfLaterEdits", func(t *testing.T) {
		f := newFixture(t)
		site, err := f.svc.CreateSite(ctx, "acct-1", simplesite.CreateSiteRequest{})
		require.NoError(t, err)
		page, err := f.svc.CreatePage(ctx, "acct-1", site.ID, simplesite.CreatePageRequest{
			EditorState: map[string]any{"title": "v1"},
		})
		require.NoError(t, err)

		_, err = f.svc.PublishPage(ctx, "acct-1", page.ID)
		require.NoError(t, err)
		_, err = f.svc.UpdatePage(ctx, "acct-1", page.ID, simplesite.PagePatch{
			EditorState: map[string]any{"title": "v2"},
		})
		require.NoError(t, err)

		got, err := f.svc.GetPage(ctx, "acct-1", page.ID)
		require.NoError(t, err)
		assert.Equal(t, "v2", got.EditorState["title"])
		assert.Equal(t, "v1", got.PublishedState["title"])
	})

	t.Run("UploadFailureLeavesPageUntouched", func(t *testing.T) {
		f := newFixture(t)
		site, err := f.svc.CreateSite(ctx, "acct-1", simplesite.CreateSiteRequest{})
		require.NoError(t, err)
		page, err := f.svc.CreatePage(ctx, "acct-1", site.ID, simplesite.CreatePageRequest{})
		require.NoError(t, err)

		boom := errors.New("access denied")
		f.store.FailWith(boom)

		_, err = f.svc.PublishPage(ctx, "acct-1", page.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)

		var publishErr *simplesite.PublishError
		require.ErrorAs(t, err, &publishErr)
		assert.Equal(t, "upload", publishErr.Op)

		got, err := f.svc.GetPage(ctx, "acct-1", page.ID)
		require.NoError(t, err)
		assert.Nil(t, got.PublishedState)
		assert.Nil(t, got.PublishedHTMLURL)
		assert.True(t, page.UpdatedAt.Equal(got.UpdatedAt))
		assert.Equal(t, []string{"error"}, f.observer.outcomes)
	})

	t.Run("MissingBucket", func(t *testing.T) {
		svc, err := simplesite.New(
			simplesite.WithSiteRepository(memory.NewSiteRepository()),
			simplesite.WithPageRepository(memory.NewPageRepository()),
			simplesite.WithBlobStore(s3.NewWithClient(nil, s3.Config{})),
		)
		require.NoError(t, err)

		site, err := svc.CreateSite(ctx, "acct-1", simplesite.CreateSiteRequest{})
		require.NoError(t, err)
		page, err := svc.CreatePage(ctx, "acct-1", site.ID, simplesite.CreatePageRequest{})
		require.NoError(t, err)

		_, err = svc.PublishPage(ctx, "acct-1", page.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, simplesite.ErrMissingBucket)
		assert.Contains(t, err.Error(), "BUILDER_BUCKET")

		got, err := svc.GetPage(ctx, "acct-1", page.ID)
		require.NoError(t, err)
		assert.Nil(t, got.PublishedHTMLURL)
	})

	t.Run("CustomRenderer", func(t *testing.T) {
		store := memorystorage.New()
		svc, err := simplesite.New(
			simplesite.WithSiteRepository(memory.NewSiteRepository()),
			simplesite.WithPageRepository(memory.NewPageRepository()),
			simplesite.WithBlobStore(store),
			simplesite.WithRenderer(func(state, settings map[string]any) string {
				return "custom:" + settings["theme"].(string)
			}),
		)
		require.NoError(t, err)

		site, err := svc.CreateSite(ctx, "acct-1", simplesite.CreateSiteRequest{
			Slug:     ptr("s"),
			Settings: map[string]any{"theme": "dark"},
		})
		require.NoError(t, err)
		page, err := svc.CreatePage(ctx, "acct-1", site.ID, simplesite.CreatePageRequest{})
		require.NoError(t, err)

		_, err = svc.PublishPage(ctx, "acct-1", page.ID)
		require.NoError(t, err)
		obj, err := store.Get("sites/s/index.html")
		require.NoError(t, err)
		assert.Equal(t, "custom:dark", string(obj.Body))
	})
}

func TestPublishKey(t *testing.T) {
	tests := []struct {
		siteSlug, pageSlug, want string
	}{
		{"testsite", "", "sites/testsite/index.html"},
		{"testsite", "/", "sites/testsite/index.html"},
		{"testsite", "about/", "sites/testsite/about.html"},
		{"testsite", "/blog/post/", "sites/testsite/blog/post.html"},
		{"abc", "home", "sites/abc/home.html"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, simplesite.PublishKey(tt.siteSlug, tt.pageSlug), "page slug %q", tt.pageSlug)
	}
}
