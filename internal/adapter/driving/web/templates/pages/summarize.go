package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/studydigest/internal/adapter/driving/web/viewmodel"
)

// Summarize renders the summarize form and, when present, the rendered result.
func Summarize(page vm.SummarizePageViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}

		hw.raw(`<h1>Summarize</h1>`)
		hw.banner("error", page.Error)

		hw.raw(`<form method="post" action="/summarize">`)
		hw.csrfField(page.CSRFToken)
		hw.raw(`<textarea name="text" required placeholder="Paste your study material here">`)
		hw.text(page.Text)
		hw.raw(`</textarea><label>Detail <select name="detail_level">`)
		for _, opt := range page.DetailOptions {
			selected := ""
			if opt.Selected {
				selected = " selected"
			}
			hw.rawf(`<option value="%s"`, opt.Value)
			hw.raw(selected)
			hw.rawf(`>%s</option>`, opt.Label)
		}
		hw.raw(`</select></label> <button type="submit">Summarize</button></form>`)

		if page.SummaryHTML == "" {
			return hw.err
		}

		hw.raw(`<h2>Summary</h2>`)
		if page.ChunkCount > 1 {
			hw.rawf(`<p>Summarized in %s parts.</p>`, strconv.Itoa(page.ChunkCount))
		}
		if page.Degraded {
			hw.raw(`<p class="notice" id="degraded">The parts could not be merged, so they are shown one after another.</p>`)
		}
		hw.raw(`<article class="summary">`)
		if hw.err != nil {
			return hw.err
		}
		// SummaryHTML is already sanitized by RenderMarkdown.
		if err := templ.Raw(page.SummaryHTML).Render(ctx, w); err != nil {
			return err
		}
		hw.raw(`</article>`)

		return hw.err
	})
}
