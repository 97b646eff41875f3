// Package pages holds the page-level templ components of the web GUI.
package pages

import (
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

// raw writes trusted markup.
func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// text writes s with HTML escaping.
func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

// rawf formats trusted markup with %s verbs; every argument is escaped first.
func (hw *htmlWriter) rawf(format string, args ...string) {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = templ.EscapeString(a)
	}
	hw.raw(fmt.Sprintf(format, escaped...))
}

func (hw *htmlWriter) csrfField(token string) {
	hw.rawf(`<input type="hidden" name="csrf_token" value="%s">`, token)
}

func (hw *htmlWriter) banner(class, msg string) {
	if msg == "" {
		return
	}
	hw.rawf(`<p class="%s">%s</p>`, class, msg)
}
