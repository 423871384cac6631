// Package render turns a page's editor state into a static HTML document.
//
// The output is a placeholder template expansion. Nothing is escaped: raw
// HTML and block props are written into the document exactly as stored.
package render

import (
	"fmt"
	"strings"
)

// DefaultTitle is used when the editor state carries no title.
const DefaultTitle = "Failure Guru Site"

// EmptyBody is emitted when no block produces output.
const EmptyBody = "<p>Empty page (no blocks yet)</p>"

// Block type tags understood by the renderer. Anything else is skipped.
const (
	BlockHero = "hero"
	BlockText = "text"
)

const documentTemplate = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <title>%s</title>
    <meta name="viewport" content="width=device-width, initial-scale=1" />
  </head>
  <body>
    %s
  </body>
</html>
`

// Render builds the HTML document for editorState. siteSettings is accepted
// for theming and is not read yet.
func Render(editorState, siteSettings map[string]any) string {
	title := DefaultTitle
	if v, ok := editorState["title"]; ok {
		title = text(v)
	}

	body := text(editorState["raw_html"])
	if body == "" {
		body = renderSections(editorState["sections"])
	}

	return fmt.Sprintf(documentTemplate, title, body)
}

func renderSections(v any) string {
	sections, _ := v.([]any)

	var parts []string
	for _, sec := range sections {
		section, _ := sec.(map[string]any)
		blocks, _ := section["blocks"].([]any)
		for _, b := range blocks {
			block, _ := b.(map[string]any)
			props, _ := block["props"].(map[string]any)

			switch block["type"] {
			case BlockHero:
				parts = append(parts,
					"<h1>"+prop(props, "headline")+"</h1>",
					"<p>"+prop(props, "subheadline")+"</p>",
				)
			case BlockText:
				parts = append(parts, "<p>"+prop(props, "text")+"</p>")
			}
		}
	}

	if len(parts) == 0 {
		return EmptyBody
	}
	return strings.Join(parts, "\n")
}

func prop(props map[string]any, key string) string {
	v, ok := props[key]
	if !ok {
		return ""
	}
	return text(v)
}

// text formats a JSON value for inclusion in the document.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
