package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/studydigest/internal/application"
	"github.com/ericfisherdev/studydigest/internal/domain/model"
	"github.com/ericfisherdev/studydigest/internal/domain/port/driven"
)

// maxBodyBytes bounds request bodies. Study material is pasted text, so a few
// megabytes is generous.
const maxBodyBytes = 4 << 20

// Messages shown to clients. Provider error text is logged, never returned.
const (
	msgNoKeyAvailable   = "no API key available, ask an administrator to add one"
	msgNotConfigured    = "credential encryption is not configured"
	msgSummaryFailed    = "summary generation failed"
	msgQuizFailed       = "quiz generation failed"
	msgInternal         = "internal server error"
	msgInvalidBody      = "invalid request body"
	msgCredentialAbsent = "credential not found"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	keys       *application.KeyService
	summarizer *application.Summarizer
	catalog    driven.ModelCatalog
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. catalog may be
// nil, in which case the models endpoint reports 503.
func NewHandler(
	keys *application.KeyService,
	summarizer *application.Summarizer,
	catalog driven.ModelCatalog,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		keys:       keys,
		summarizer: summarizer,
		catalog:    catalog,
		logger:     logger,
	}
}

// RegisterRoutes adds the REST API routes to mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("POST /api/v1/summaries", h.CreateSummary)
	mux.HandleFunc("POST /api/v1/quizzes", h.CreateQuiz)
	mux.HandleFunc("GET /api/v1/models", h.ListModels)

	mux.HandleFunc("GET /api/v1/credentials", h.ListCredentials)
	mux.HandleFunc("POST /api/v1/credentials", h.AddCredential)
	mux.HandleFunc("POST /api/v1/credentials/{id}/deactivate", h.DeactivateCredential)
	mux.HandleFunc("POST /api/v1/credentials/{id}/reactivate", h.ReactivateCredential)
	mux.HandleFunc("DELETE /api/v1/credentials/{id}", h.DeleteCredential)
}

// NewServeMux creates an http.Handler with the REST routes registered and
// wrapped with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return ApplyMiddleware(mux, logger)
}

// CreateSummary summarizes the submitted text, chunking long input unless the
// client opts out.
func (h *Handler) CreateSummary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	level, err := model.ParseDetailLevel(req.DetailLevel)
	if err != nil {
		writeError(w, http.StatusBadRequest, "detail_level must be brief, standard or detailed")
		return
	}
	if req.MaxTokens < 0 {
		writeError(w, http.StatusBadRequest, "max_tokens must not be negative")
		return
	}

	if req.Chunked != nil && !*req.Chunked {
		content, err := h.summarizer.GenerateSummary(r.Context(), req.Text, level)
		if err != nil {
			h.writeGenerationError(w, r, err, msgSummaryFailed)
			return
		}
		writeJSON(w, http.StatusOK, SummaryResponse{Summary: content, ChunkCount: 1})
		return
	}

	summary, err := h.summarizer.GenerateSummaryWithChunking(r.Context(), req.Text, level, application.SummaryOptions{
		MaxTokens: req.MaxTokens,
		OnProgress: func(current, total int) {
			if total > 1 {
				h.logger.Debug("summarizing chunk", "current", current, "total", total)
			}
		},
	})
	if err != nil {
		h.writeGenerationError(w, r, err, msgSummaryFailed)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(*summary))
}

// CreateQuiz generates multiple-choice questions about the submitted text.
func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req QuizRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.QuestionCount < 0 || req.QuestionCount > application.MaxQuizQuestions {
		writeError(w, http.StatusBadRequest, "question_count must be between 1 and 20")
		return
	}

	questions, err := h.summarizer.GenerateQuiz(r.Context(), req.Text, req.QuestionCount)
	if err != nil {
		h.writeGenerationError(w, r, err, msgQuizFailed)
		return
	}

	resp := QuizResponse{Questions: make([]QuizQuestionResponse, 0, len(questions))}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, toQuizQuestionResponse(q))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListModels returns the provider's model catalog.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "model catalog is not available")
		return
	}

	models, err := h.catalog.ListModels(r.Context())
	if err != nil {
		h.logger.Error("failed to list models", "error", err)
		writeError(w, http.StatusBadGateway, "could not fetch the model list")
		return
	}

	resp := make([]ModelResponse, 0, len(models))
	for _, m := range models {
		resp = append(resp, toModelResponse(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// decodeBody reads a bounded JSON body into v, writing a 400 and returning
// false when it cannot.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

// writeGenerationError maps summarizer failures to responses. failedMsg is
// used for provider failures so upstream error text never reaches the client.
func (h *Handler) writeGenerationError(w http.ResponseWriter, r *http.Request, err error, failedMsg string) {
	switch {
	case errors.Is(err, application.ErrNoKeyAvailable):
		writeError(w, http.StatusServiceUnavailable, msgNoKeyAvailable)
	case errors.Is(err, driven.ErrCipherNotConfigured):
		h.logger.Error("credential cipher not configured", "error", err)
		writeError(w, http.StatusServiceUnavailable, msgNotConfigured)
	case errors.Is(err, context.Canceled):
		h.logger.Info("client went away during generation", "path", r.URL.Path)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "generation timed out")
	default:
		h.logger.Error("generation failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, failedMsg)
	}
}
