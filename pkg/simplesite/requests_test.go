package simplesite_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-site/pkg/simplesite"
)

func TestCreateSiteRequest_DropsWrongTypedFields(t *testing.T) {
	var req simplesite.CreateSiteRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":5,"slug":"ok","settings":"dark","primary_domain":null,"extra":true}`), &req))

	assert.Nil(t, req.Name)
	require.NotNil(t, req.Slug)
	assert.Equal(t, "ok", *req.Slug)
	assert.Nil(t, req.Settings)
	assert.Nil(t, req.PrimaryDomain)

	site := simplesite.NewSite("acct", req)
	assert.Equal(t, simplesite.DefaultSiteName, site.Name)
	assert.Equal(t, map[string]any{}, site.Settings)
}

func TestCreatePageRequest_DropsWrongTypedFields(t *testing.T) {
	var req simplesite.CreatePageRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Home","type":7,"editor_state":[1],"slug":{"a":1}}`), &req))

	require.NotNil(t, req.Name)
	assert.Equal(t, "Home", *req.Name)
	assert.Nil(t, req.Type)
	assert.Nil(t, req.EditorState)
	assert.Nil(t, req.Slug)
}

func TestPatches_DropWrongTypedFields(t *testing.T) {
	var sitePatch simplesite.SitePatch
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Renamed","settings":[],"publish_status":false}`), &sitePatch))
	require.NotNil(t, sitePatch.Name)
	assert.Equal(t, "Renamed", *sitePatch.Name)
	assert.Nil(t, sitePatch.Settings)
	assert.Nil(t, sitePatch.PublishStatus)

	var pagePatch simplesite.PagePatch
	require.NoError(t, json.Unmarshal([]byte(`{"editor_state":[1],"published_html_url":3,"slug":"about"}`), &pagePatch))
	assert.Nil(t, pagePatch.EditorState)
	assert.Nil(t, pagePatch.PublishedHTMLURL)
	require.NotNil(t, pagePatch.Slug)
	assert.Equal(t, "about", *pagePatch.Slug)
}

func TestRequests_RejectNonObjects(t *testing.T) {
	var req simplesite.CreateSiteRequest
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &req))
	assert.Error(t, json.Unmarshal([]byte(`"site"`), &req))

	var patch simplesite.PagePatch
	assert.NoError(t, json.Unmarshal([]byte(`null`), &patch))
	assert.Equal(t, simplesite.PagePatch{}, patch)
}
