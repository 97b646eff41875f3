// Package templates holds the page layout shared by every web page.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const stylesheet = `
body { font-family: system-ui, sans-serif; margin: 0; background: #f6f7f9; color: #1d2330; }
header { background: #1d2330; color: #fff; padding: 0.75rem 1.5rem; display: flex; gap: 1.5rem; align-items: center; }
header a { color: #cfd6e4; text-decoration: none; }
header a:hover { color: #fff; }
main { max-width: 60rem; margin: 1.5rem auto; padding: 0 1.5rem; }
table { width: 100%; border-collapse: collapse; background: #fff; }
th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #e3e6ec; }
form.inline { display: inline; }
textarea { width: 100%; min-height: 16rem; font-family: inherit; }
.notice { background: #e6f4ea; padding: 0.5rem 1rem; }
.error { background: #fce8e6; padding: 0.5rem 1rem; }
.status-ok { color: #137333; }
.status-warning { color: #b06000; }
.status-muted { color: #5f6368; }
.status-error { color: #c5221f; }
.summary { background: #fff; padding: 1rem 1.5rem; }
`

// Layout wraps body in the full HTML document with navigation.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+templ.EscapeString(title)+`</title><style>`+stylesheet+`</style></head><body>`+
			`<header><strong>StudyDigest</strong><a href="/summarize">Summarize</a><a href="/">API keys</a></header>`+
			`<main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
