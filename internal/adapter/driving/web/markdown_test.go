package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_PlainText(t *testing.T) {
	result := RenderMarkdown("hello world")
	assert.Contains(t, result, "hello world")
}

func TestRenderMarkdown_Bold(t *testing.T) {
	result := RenderMarkdown("**bold text**")
	assert.Contains(t, result, "<strong>bold text</strong>")
}

func TestRenderMarkdown_HeadingsKeepIDs(t *testing.T) {
	result := RenderMarkdown("## Cell Biology")
	assert.Contains(t, result, `<h2 id="cell-biology">Cell Biology</h2>`)
}

func TestRenderMarkdown_BulletList(t *testing.T) {
	result := RenderMarkdown("- mitochondria\n- ribosome")
	assert.Contains(t, result, "<ul>")
	assert.Contains(t, result, "<li>mitochondria</li>")
}

func TestRenderMarkdown_CodeBlock(t *testing.T) {
	input := "```go\nfmt.Println(\"hello\")\n```"
	result := RenderMarkdown(input)
	assert.Contains(t, result, "<code")
	assert.Contains(t, result, "fmt.Println")
}

func TestRenderMarkdown_Link(t *testing.T) {
	result := RenderMarkdown("[click](https://example.com)")
	assert.Contains(t, result, `<a href="https://example.com"`)
	assert.Contains(t, result, "click</a>")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	result := RenderMarkdown(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestRenderMarkdown_SanitizesJavascriptLink(t *testing.T) {
	result := RenderMarkdown("[x](javascript:alert(1))")
	assert.NotContains(t, result, "javascript:")
}

func TestRenderMarkdown_GFMTable(t *testing.T) {
	result := RenderMarkdown("| term | meaning |\n|---|---|\n| ATP | energy |")
	assert.Contains(t, result, "<table>")
	assert.Contains(t, result, "<td>ATP</td>")
}

func TestRenderMarkdown_GFMStrikethrough(t *testing.T) {
	result := RenderMarkdown("~~deleted~~")
	assert.Contains(t, result, "<del>deleted</del>")
}

func TestRenderMarkdown_ExternalLinksOpenInNewTab(t *testing.T) {
	result := RenderMarkdown("[docs](https://example.com/docs)")
	assert.Contains(t, result, `target="_blank"`)
	assert.Contains(t, result, "noopener")
}

func TestRenderMarkdown_RawHTMLDropped(t *testing.T) {
	result := RenderMarkdown("before\n\n<div onclick=\"x()\">inline</div>\n\nafter")
	assert.NotContains(t, result, "onclick")
	assert.Contains(t, result, "after")
}
