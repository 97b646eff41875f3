package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/studydigest/internal/adapter/driving/web/viewmodel"
)

// Credentials renders the API key admin page: the key table with per-row
// actions and the form for adding a key.
func Credentials(page vm.CredentialsPageViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}

		hw.raw(`<h1>API keys</h1>`)
		hw.banner("notice", page.Notice)
		hw.banner("error", page.Error)
		hw.rawf(`<p>%s of %s keys usable.</p>`, strconv.Itoa(page.UsableCount), strconv.Itoa(len(page.Credentials)))

		if len(page.Credentials) == 0 {
			hw.raw(`<p id="no-credentials">No API keys yet. Add one below to enable summaries.</p>`)
		} else {
			hw.raw(`<table id="credentials"><thead><tr><th>Key</th><th>Provider</th><th>Status</th>` +
				`<th>Failures</th><th>Last used</th><th>Disabled until</th><th></th></tr></thead><tbody>`)
			for _, c := range page.Credentials {
				credentialRow(hw, c, page.CSRFToken)
			}
			hw.raw(`</tbody></table>`)
		}

		hw.raw(`<h2>Add a key</h2><form method="post" action="/credentials">`)
		hw.csrfField(page.CSRFToken)
		hw.raw(`<label>Key <input type="password" name="key" autocomplete="off" required></label> ` +
			`<label>Provider <input type="text" name="provider" placeholder="openrouter"></label> ` +
			`<button type="submit">Add</button></form>`)

		return hw.err
	})
}

func credentialRow(hw *htmlWriter, c vm.CredentialRowViewModel, csrf string) {
	hw.rawf(`<tr data-id="%s"><td><code>%s</code></td><td>%s</td><td class="%s">%s</td><td>%s</td><td>%s</td><td>%s</td><td>`,
		c.ID, c.MaskedKey, c.Provider, c.StatusClass, c.Status, strconv.Itoa(c.FailCount), c.LastUsed, c.DisabledUntil)

	if c.Active {
		actionButton(hw, c.DeactivateURL, "Deactivate", csrf)
	} else {
		actionButton(hw, c.ReactivateURL, "Reactivate", csrf)
	}
	actionButton(hw, c.DeleteURL, "Delete", csrf)

	hw.raw(`</td></tr>`)
}

func actionButton(hw *htmlWriter, action, label, csrf string) {
	hw.rawf(`<form class="inline" method="post" action="%s">`, action)
	hw.csrfField(csrf)
	hw.rawf(`<button type="submit">%s</button></form>`, label)
}
