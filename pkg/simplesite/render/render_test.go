package render_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/simple-site/pkg/simplesite/render"
)

func TestRender_RawHTML(t *testing.T) {
	html := render.Render(map[string]any{
		"title":    "Hello World",
		"raw_html": "<h1>X</h1>",
		"sections": []any{
			map[string]any{"blocks": []any{map[string]any{"type": "text", "props": map[string]any{"text": "ignored"}}}},
		},
	}, nil)

	assert.Contains(t, html, "<title>Hello World</title>")
	assert.Contains(t, html, "<body>\n    <h1>X</h1>\n  </body>")
	assert.NotContains(t, html, "ignored")
}

func TestRender_DefaultTitle(t *testing.T) {
	html := render.Render(map[string]any{}, map[string]any{"theme": "dark"})
	assert.Contains(t, html, "<title>"+render.DefaultTitle+"</title>")
}

func TestRender_EmptyPage(t *testing.T) {
	t.Run("NoSections", func(t *testing.T) {
		assert.Contains(t, render.Render(map[string]any{}, nil), render.EmptyBody)
	})

	t.Run("EmptyRawHTMLFallsBack", func(t *testing.T) {
		assert.Contains(t, render.Render(map[string]any{"raw_html": ""}, nil), render.EmptyBody)
	})

	t.Run("OnlyUnknownBlocks", func(t *testing.T) {
		state := map[string]any{
			"sections": []any{
				map[string]any{"blocks": []any{map[string]any{"type": "video", "props": map[string]any{"src": "x.mp4"}}}},
			},
		}
		html := render.Render(state, nil)
		assert.Contains(t, html, render.EmptyBody)
		assert.NotContains(t, html, "x.mp4")
	})
}

func TestRender_Blocks(t *testing.T) {
	state := map[string]any{
		"title": "Blocks",
		"sections": []any{
			map[string]any{
				"id": "sec1",
				"blocks": []any{
					map[string]any{"type": "hero", "props": map[string]any{"headline": "Welcome", "subheadline": "Edit me"}},
					map[string]any{"type": "carousel", "props": map[string]any{}},
				},
			},
			map[string]any{
				"blocks": []any{
					map[string]any{"type": "text", "props": map[string]any{"text": "Second"}},
					map[string]any{"type": "hero"},
				},
			},
		},
	}

	html := render.Render(state, nil)

	body := "<h1>Welcome</h1>\n<p>Edit me</p>\n<p>Second</p>\n<h1></h1>\n<p></p>"
	assert.Contains(t, html, body)
	assert.NotContains(t, html, render.EmptyBody)
}

// Input is embedded as-is; the placeholder renderer does not escape.
func TestRender_DoesNotEscape(t *testing.T) {
	state := map[string]any{
		"title": "<script>alert(1)</script>",
		"sections": []any{
			map[string]any{"blocks": []any{map[string]any{"type": "text", "props": map[string]any{"text": "a & b <i>c</i>"}}}},
		},
	}

	html := render.Render(state, nil)
	assert.Contains(t, html, "<title><script>alert(1)</script></title>")
	assert.Contains(t, html, "<p>a & b <i>c</i></p>")
}

func TestRender_Deterministic(t *testing.T) {
	state := map[string]any{
		"title": "Same",
		"sections": []any{
			map[string]any{"blocks": []any{
				map[string]any{"type": "hero", "props": map[string]any{"headline": "H", "subheadline": "S"}},
				map[string]any{"type": "text", "props": map[string]any{"text": "T"}},
			}},
		},
	}

	first := render.Render(state, nil)
	second := render.Render(state, nil)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "<!DOCTYPE html>\n"))
}
