package web

import "net/http"

// RegisterRoutes registers all web GUI routes on the provided mux.
// State-changing routes are POST-only and require a matching CSRF token.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /{$}", h.Credentials)
	mux.HandleFunc("POST /credentials", limitForm(requireCSRF(h.AddCredential)))
	mux.HandleFunc("POST /credentials/{id}/{action}", limitForm(requireCSRF(h.CredentialAction)))

	mux.HandleFunc("GET /summarize", h.SummarizeForm)
	mux.HandleFunc("POST /summarize", limitForm(requireCSRF(h.Summarize)))
}
