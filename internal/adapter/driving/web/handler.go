// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/studydigest/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/studydigest/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/studydigest/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/studydigest/internal/application"
	"github.com/ericfisherdev/studydigest/internal/domain/model"
	"github.com/ericfisherdev/studydigest/internal/domain/port/driven"
)

// maxFormBytes bounds form submissions, which carry pasted study material.
const maxFormBytes = 4 << 20

// notices maps the ?notice= codes set by redirects to banner text.
var notices = map[string]string{
	"added":       "API key added.",
	"deactivated": "API key deactivated.",
	"reactivated": "API key reactivated.",
	"deleted":     "API key deleted.",
}

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	keys       *application.KeyService
	summarizer *application.Summarizer
	logger     *slog.Logger
	now        func() time.Time
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	keys *application.KeyService,
	summarizer *application.Summarizer,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		keys:       keys,
		summarizer: summarizer,
		logger:     logger,
		now:        time.Now,
	}
}

// Credentials renders the API key admin page.
func (h *Handler) Credentials(w http.ResponseWriter, r *http.Request) {
	token := csrfToken(w, r)

	views, err := h.keys.ListCredentials(r.Context())
	page := toCredentialsPageViewModel(views, h.now())
	page.CSRFToken = token
	page.Notice = notices[r.URL.Query().Get("notice")]
	page.Error = r.URL.Query().Get("error")

	if err != nil {
		h.logger.Error("failed to list credentials", "error", err)
		page.Error = "Could not load API keys: " + credentialErrorText(err)
	}

	h.render(w, r, "API keys", pages.Credentials(page))
}

// AddCredential handles the add-key form.
func (h *Handler) AddCredential(w http.ResponseWriter, r *http.Request) {
	_, err := h.keys.AddCredential(r.Context(), r.FormValue("key"), r.FormValue("provider"))
	if err != nil {
		h.logger.Error("failed to add credential", "error", err)
		redirectWithError(w, r, credentialErrorText(err))
		return
	}
	http.Redirect(w, r, "/?notice=added", http.StatusSeeOther)
}

// CredentialAction handles the per-row deactivate, reactivate and delete forms.
func (h *Handler) CredentialAction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	action := r.PathValue("action")

	var err error
	switch action {
	case "deactivate":
		err = h.keys.Deactivate(r.Context(), id)
	case "reactivate":
		err = h.keys.Reactivate(r.Context(), id)
	case "delete":
		err = h.keys.DeleteCredential(r.Context(), id)
	default:
		http.NotFound(w, r)
		return
	}

	if err != nil {
		h.logger.Error("credential action failed", "action", action, "credential_id", id, "error", err)
		redirectWithError(w, r, credentialErrorText(err))
		return
	}
	// Every action name takes "d" for its past tense notice code.
	http.Redirect(w, r, "/?notice="+action+"d", http.StatusSeeOther)
}

// SummarizeForm renders an empty summarize form.
func (h *Handler) SummarizeForm(w http.ResponseWriter, r *http.Request) {
	page := vm.SummarizePageViewModel{
		DetailOptions: detailOptions(model.DetailStandard),
		CSRFToken:     csrfToken(w, r),
	}
	h.render(w, r, "Summarize", pages.Summarize(page))
}

// Summarize runs a chunked summary of the submitted text and renders the result
// below the form.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("text")
	level, err := model.ParseDetailLevel(r.FormValue("detail_level"))
	if err != nil {
		level = model.DetailStandard
	}

	page := vm.SummarizePageViewModel{
		Text:          text,
		DetailOptions: detailOptions(level),
		CSRFToken:     csrfToken(w, r),
	}

	if strings.TrimSpace(text) == "" {
		page.Error = "Paste some text to summarize."
		h.render(w, r, "Summarize", pages.Summarize(page))
		return
	}

	summary, err := h.summarizer.GenerateSummaryWithChunking(r.Context(), text, level, application.SummaryOptions{})
	switch {
	case errors.Is(err, application.ErrNoKeyAvailable):
		page.Error = "No API key is available right now. Ask an administrator to add one."
	case errors.Is(err, driven.ErrCipherNotConfigured):
		h.logger.Error("credential cipher not configured", "error", err)
		page.Error = "The server's credential encryption is not configured."
	case err != nil:
		h.logger.Error("summary generation failed", "error", err)
		page.Error = "Summary generation failed. Please try again."
	default:
		page.SummaryHTML = RenderMarkdown(summary.Content)
		page.ChunkCount = summary.ChunkCount
		page.Degraded = summary.Degraded
	}

	h.render(w, r, "Summarize", pages.Summarize(page))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Layout(title+" · StudyDigest", body).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func credentialErrorText(err error) string {
	switch {
	case errors.Is(err, application.ErrEmptyCredential):
		return "the key must not be empty"
	case errors.Is(err, driven.ErrCredentialNotFound):
		return "that key no longer exists"
	case errors.Is(err, driven.ErrCipherNotConfigured):
		return "credential encryption is not configured on the server"
	default:
		return "internal error, see server logs"
	}
}

func redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

// limitForm bounds the request body before form parsing.
func limitForm(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		next(w, r)
	}
}
