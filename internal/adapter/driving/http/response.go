package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/studydigest/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SummaryRequest is the JSON body of POST /api/v1/summaries. Chunked defaults
// to true; MaxTokens of zero selects the configured chunk budget.
type SummaryRequest struct {
	Text        string `json:"text"`
	DetailLevel string `json:"detail_level"`
	Chunked     *bool  `json:"chunked"`
	MaxTokens   int    `json:"max_tokens"`
}

// SummaryResponse is the JSON representation of a generated summary.
type SummaryResponse struct {
	Summary    string `json:"summary"`
	ChunkCount int    `json:"chunk_count"`
	Degraded   bool   `json:"degraded"`
}

// QuizRequest is the JSON body of POST /api/v1/quizzes.
type QuizRequest struct {
	Text          string `json:"text"`
	QuestionCount int    `json:"question_count"`
}

// QuizResponse wraps the generated questions.
type QuizResponse struct {
	Questions []QuizQuestionResponse `json:"questions"`
}

// QuizQuestionResponse is the JSON representation of one quiz question.
type QuizQuestionResponse struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation"`
}

// AddCredentialRequest is the JSON body of POST /api/v1/credentials.
type AddCredentialRequest struct {
	Key      string `json:"key"`
	Provider string `json:"provider"`
}

// AddCredentialResponse returns the id assigned to a new credential.
type AddCredentialResponse struct {
	ID string `json:"id"`
}

// CredentialResponse is the JSON representation of a credential. The secret
// itself never appears; MaskedKey shows only its last characters.
type CredentialResponse struct {
	ID            string  `json:"id"`
	Provider      string  `json:"provider"`
	MaskedKey     string  `json:"masked_key"`
	Active        bool    `json:"active"`
	Usable        bool    `json:"usable"`
	Unreadable    bool    `json:"unreadable"`
	FailCount     int     `json:"fail_count"`
	LastUsedAt    *string `json:"last_used_at"`
	DisabledUntil *string `json:"disabled_until"`
	CreatedAt     string  `json:"created_at"`
}

// ModelResponse is the JSON representation of a provider model.
type ModelResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toSummaryResponse(s model.Summary) SummaryResponse {
	return SummaryResponse{
		Summary:    s.Content,
		ChunkCount: s.ChunkCount,
		Degraded:   s.Degraded,
	}
}

func toQuizQuestionResponse(q model.QuizQuestion) QuizQuestionResponse {
	options := q.Options
	if options == nil {
		options = []string{}
	}
	return QuizQuestionResponse{
		Question:    q.Question,
		Options:     options,
		AnswerIndex: q.AnswerIndex,
		Explanation: q.Explanation,
	}
}

func toCredentialResponse(v model.CredentialView) CredentialResponse {
	return CredentialResponse{
		ID:            v.ID,
		Provider:      v.Provider,
		MaskedKey:     v.MaskedKey,
		Active:        v.Active,
		Usable:        v.Usable,
		Unreadable:    v.Unreadable,
		FailCount:     v.FailCount,
		LastUsedAt:    formatOptionalTime(v.LastUsedAt),
		DisabledUntil: formatOptionalTime(v.DisabledUntil),
		CreatedAt:     v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toModelResponse(m model.ProviderModel) ModelResponse {
	return ModelResponse{
		ID:            m.ID,
		Name:          m.Name,
		ContextLength: m.ContextLength,
	}
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
