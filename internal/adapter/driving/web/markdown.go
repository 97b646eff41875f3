package web

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Summaries are model output, so goldmark's default renderer drops raw HTML
// and the UGC policy strips whatever else is unsafe. External links open in a
// new tab so the summary page is not lost.
var (
	summaryMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	summaryPolicy = bluemonday.UGCPolicy().AddTargetBlankToFullyQualifiedLinks(true)
)

// RenderMarkdown converts a Markdown summary to sanitized HTML. Empty input
// yields an empty string.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var out bytes.Buffer
	if err := summaryMarkdown.Convert([]byte(src), &out); err != nil {
		// Fall back to the escaped source rather than an empty result.
		return summaryPolicy.Sanitize(src)
	}
	return summaryPolicy.Sanitize(out.String())
}
