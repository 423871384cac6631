package simplesite

import "encoding/json"

// CreateSiteRequest contains the caller-supplied fields for a new site.
// Nil fields take their defaults.
type CreateSiteRequest struct {
	Name            *string        `json:"name"`
	Slug            *string        `json:"slug"`
	PrimaryDomain   *string        `json:"primary_domain"`
	DealerAccountID *string        `json:"dealer_account_id"`
	Settings        map[string]any `json:"settings"`
}

// CreatePageRequest contains the caller-supplied fields for a new page.
type CreatePageRequest struct {
	Name                *string        `json:"name"`
	Slug                *string        `json:"slug"`
	Type                *PageType      `json:"type"`
	EditorState         map[string]any `json:"editor_state"`
	LastEditorAccountID *string        `json:"last_editor_account_id"`
}

// SitePatch lists the mutable site attributes. A nil field leaves the stored
// value alone, so a JSON null never overwrites anything. Keys that do not
// map to a field here are dropped when the patch is decoded.
type SitePatch struct {
	Name            *string        `json:"name"`
	Slug            *string        `json:"slug"`
	PrimaryDomain   *string        `json:"primary_domain"`
	DealerAccountID *string        `json:"dealer_account_id"`
	PublishStatus   *PublishStatus `json:"publish_status"`
	PublishedAt     *string        `json:"published_at"`
	Settings        map[string]any `json:"settings"`
}

// PagePatch lists the mutable page attributes, with the same nil semantics
// as SitePatch.
type PagePatch struct {
	Name                *string        `json:"name"`
	Slug                *string        `json:"slug"`
	Type                *PageType      `json:"type"`
	EditorState         map[string]any `json:"editor_state"`
	PublishedState      map[string]any `json:"published_state"`
	PublishedHTMLURL    *string        `json:"published_html_url"`
	LastEditorAccountID *string        `json:"last_editor_account_id"`
}

// PublishResult is returned by a successful publish.
type PublishResult struct {
	PublishedHTMLURL string `json:"published_html_url"`
	Page             *Page  `json:"page"`
}

// UnmarshalJSON decodes req field by field. A field whose value has the
// wrong type is dropped and keeps its default.
func (req *CreateSiteRequest) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	*req = CreateSiteRequest{}
	optional(fields, "name", &req.Name)
	optional(fields, "slug", &req.Slug)
	optional(fields, "primary_domain", &req.PrimaryDomain)
	optional(fields, "dealer_account_id", &req.DealerAccountID)
	optional(fields, "settings", &req.Settings)
	return nil
}

// UnmarshalJSON decodes req field by field, like CreateSiteRequest.
func (req *CreatePageRequest) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	*req = CreatePageRequest{}
	optional(fields, "name", &req.Name)
	optional(fields, "slug", &req.Slug)
	optional(fields, "type", &req.Type)
	optional(fields, "editor_state", &req.EditorState)
	optional(fields, "last_editor_account_id", &req.LastEditorAccountID)
	return nil
}

// UnmarshalJSON decodes patch field by field. A field whose value has the
// wrong type is dropped, so the stored value is left alone.
func (patch *SitePatch) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	*patch = SitePatch{}
	optional(fields, "name", &patch.Name)
	optional(fields, "slug", &patch.Slug)
	optional(fields, "primary_domain", &patch.PrimaryDomain)
	optional(fields, "dealer_account_id", &patch.DealerAccountID)
	optional(fields, "publish_status", &patch.PublishStatus)
	optional(fields, "published_at", &patch.PublishedAt)
	optional(fields, "settings", &patch.Settings)
	return nil
}

// UnmarshalJSON decodes patch field by field, like SitePatch.
func (patch *PagePatch) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	*patch = PagePatch{}
	optional(fields, "name", &patch.Name)
	optional(fields, "slug", &patch.Slug)
	optional(fields, "type", &patch.Type)
	optional(fields, "editor_state", &patch.EditorState)
	optional(fields, "published_state", &patch.PublishedState)
	optional(fields, "published_html_url", &patch.PublishedHTMLURL)
	optional(fields, "last_editor_account_id", &patch.LastEditorAccountID)
	return nil
}

// decodeFields splits a JSON object into its raw members. A JSON null
// yields no fields; anything else that is not an object is an error.
func decodeFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// optional decodes fields[key] into dst, leaving dst untouched when the key
// is absent or its value does not fit.
func optional[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}
