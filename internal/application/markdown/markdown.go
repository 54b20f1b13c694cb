// Package markdown renders admin-authored markdown (speaker bios, session
// abstracts, pitch summaries, newsletter issues) to HTML.
package markdown

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// renderer escapes raw HTML in the source (WithUnsafe is NOT set).
var renderer = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Render converts markdown to HTML.
func Render(src string) (string, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderOrEscape renders src, falling back to escaped text if conversion fails.
func RenderOrEscape(src string) string {
	out, err := Render(src)
	if err != nil {
		return "<p>" + template.HTMLEscapeString(src) + "</p>"
	}
	return out
}
