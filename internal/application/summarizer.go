package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ericfisherdev/studydigest/internal/domain/model"
	"github.com/ericfisherdev/studydigest/internal/domain/port/driven"
)

// MaxAttempts is the number of provider calls one logical request may make,
// each with a freshly selected credential.
const MaxAttempts = 3

const (
	partialSeparator  = "\n\n"
	degradedSeparator = "\n\n---\n\n"
	// combineSlack is how far past the chunk budget joined partial summaries
	// may grow before a combine pass is requested.
	combineSlack = 1.5
)

// Quiz size bounds.
const (
	DefaultQuizQuestions = 5
	MaxQuizQuestions     = 20
)

// ErrInvalidQuiz is returned when the model reply cannot be read as a quiz.
var ErrInvalidQuiz = errors.New("model returned an invalid quiz")

// ProgressFunc is called with a 1-based chunk index and the chunk total before
// each chunk is summarized.
type ProgressFunc func(current, total int)

// SummaryOptions tunes GenerateSummaryWithChunking. Zero values select defaults.
type SummaryOptions struct {
	MaxTokens  int
	OnProgress ProgressFunc
}

// Summarizer produces summaries and quizzes through the completion provider,
// rotating credentials on failure.
type Summarizer struct {
	keys        *KeyService
	client      driven.CompletionClient
	chunkTokens int
}

// NewSummarizer creates a Summarizer. chunkTokens is the default chunk budget;
// values <= 0 select DefaultChunkTokens.
func NewSummarizer(keys *KeyService, client driven.CompletionClient, chunkTokens int) *Summarizer {
	if chunkTokens <= 0 {
		chunkTokens = DefaultChunkTokens
	}
	return &Summarizer{
		keys:        keys,
		client:      client,
		chunkTokens: chunkTokens,
	}
}

// GenerateSummary summarizes text in a single provider call, without chunking.
func (s *Summarizer) GenerateSummary(ctx context.Context, text string, level model.DetailLevel) (string, error) {
	return s.complete(ctx, summaryMessages(text, level, 1, 1))
}

// GenerateSummaryWithChunking summarizes text of any length. Oversized input is
// split with ChunkText, each chunk is summarized in order, and the partial
// summaries are merged. When the merge call fails the partials are returned
// joined, with Degraded set.
func (s *Summarizer) GenerateSummaryWithChunking(ctx context.Context, text string, level model.DetailLevel, opts SummaryOptions) (*model.Summary, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.chunkTokens
	}
	progress := opts.OnProgress
	if progress == nil {
		progress = func(int, int) {}
	}

	chunks := ChunkText(text, maxTokens)
	total := len(chunks)

	if total == 1 {
		progress(1, 1)
		content, err := s.complete(ctx, summaryMessages(chunks[0], level, 1, 1))
		if err != nil {
			return nil, err
		}
		return &model.Summary{Content: content, ChunkCount: 1}, nil
	}

	slog.InfoContext(ctx, "summarizing in chunks", "chunks", total, "max_tokens", maxTokens)

	partials := make([]string, 0, total)
	for i, chunk := range chunks {
		progress(i+1, total)
		partial, err := s.complete(ctx, summaryMessages(chunk, level, i+1, total))
		if err != nil {
			return nil, fmt.Errorf("summarize chunk %d of %d: %w", i+1, total, err)
		}
		partials = append(partials, partial)
	}

	joined := strings.Join(partials, partialSeparator)
	if float64(EstimateTokens(joined)) <= combineSlack*float64(maxTokens) {
		return &model.Summary{Content: joined, ChunkCount: total}, nil
	}

	combined, err := s.complete(ctx, combineMessages(partials))
	if err != nil {
		slog.WarnContext(ctx, "combining partial summaries failed, returning them joined",
			"chunks", total,
			"error", err,
		)
		return &model.Summary{
			Content:    strings.Join(partials, degradedSeparator),
			ChunkCount: total,
			Degraded:   true,
		}, nil
	}

	return &model.Summary{Content: combined, ChunkCount: total}, nil
}

// GenerateQuiz writes count multiple-choice questions about text. Input larger
// than one chunk is first condensed with a detailed chunked summary.
func (s *Summarizer) GenerateQuiz(ctx context.Context, text string, count int) ([]model.QuizQuestion, error) {
	switch {
	case count <= 0:
		count = DefaultQuizQuestions
	case count > MaxQuizQuestions:
		count = MaxQuizQuestions
	}

	source := text
	if EstimateTokens(text) > s.chunkTokens {
		summary, err := s.GenerateSummaryWithChunking(ctx, text, model.DetailDetailed, SummaryOptions{})
		if err != nil {
			return nil, fmt.Errorf("condense quiz source: %w", err)
		}
		source = summary.Content
	}

	reply, err := s.complete(ctx, quizMessages(source, count))
	if err != nil {
		return nil, err
	}

	return parseQuiz(reply)
}

// complete runs one logical completion: select a credential, call the
// provider, report the outcome, and on failure try again with a newly
// selected credential until MaxAttempts calls have been made. Running out of
// usable credentials ends the loop at once.
func (s *Summarizer) complete(ctx context.Context, messages []model.Message) (string, error) {
	attempt := 0

	op := func() (string, error) {
		attempt++

		lease, err := s.keys.SelectCredential(ctx)
		if err != nil {
			if errors.Is(err, driven.ErrDecryption) {
				return "", err
			}
			return "", backoff.Permanent(err)
		}

		text, err := s.client.Complete(ctx, lease.APIKey, messages)
		if err != nil {
			if ctx.Err() != nil {
				return "", backoff.Permanent(err)
			}
			s.reportFailure(ctx, lease.ID, err)
			return "", err
		}

		if err := s.keys.ReportSuccess(ctx, lease.ID); err != nil {
			slog.ErrorContext(ctx, "failed to record credential success", "credential_id", lease.ID, "error", err)
		}
		return text, nil
	}

	notify := func(err error, _ time.Duration) {
		slog.WarnContext(ctx, "completion attempt failed, rotating credential",
			"attempt", attempt,
			"max_attempts", MaxAttempts,
			"error", err,
		)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&backoff.ZeroBackOff{}, MaxAttempts-1),
		ctx,
	)

	text, err := backoff.RetryNotifyWithData(op, policy, notify)
	if err != nil {
		if errors.Is(err, ErrNoKeyAvailable) || errors.Is(err, driven.ErrCipherNotConfigured) {
			return "", err
		}
		return "", fmt.Errorf("completion failed after %d attempt(s): %w", attempt, err)
	}
	return text, nil
}

// reportFailure records a failed call against the credential. Errors from the
// store are logged and otherwise ignored so they never replace the call error.
func (s *Summarizer) reportFailure(ctx context.Context, id string, callErr error) {
	rateLimited := false
	credentialFailure := false

	var perr *driven.ProviderError
	if errors.As(callErr, &perr) {
		rateLimited = perr.IsRateLimited()
		credentialFailure = perr.IsCredentialFailure()
	}

	slog.WarnContext(ctx, "provider call failed",
		"credential_id", id,
		"credential_failure", credentialFailure,
		"rate_limited", rateLimited,
		"error", callErr,
	)

	if err := s.keys.ReportFailure(ctx, id, rateLimited); err != nil {
		slog.ErrorContext(ctx, "failed to record credential failure", "credential_id", id, "error", err)
	}
}

// parseQuiz reads the model reply as either {"questions": [...]} or a bare
// array, tolerating a surrounding Markdown code fence.
func parseQuiz(reply string) ([]model.QuizQuestion, error) {
	body := stripCodeFence(reply)

	var questions []model.QuizQuestion
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &questions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
		}
	} else {
		var wrapped struct {
			Questions []model.QuizQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(body), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
		}
		questions = wrapped.Questions
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidQuiz)
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d is incomplete", ErrInvalidQuiz, i+1)
		}
		if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
			return nil, fmt.Errorf("%w: question %d answer index %d out of range", ErrInvalidQuiz, i+1, q.AnswerIndex)
		}
	}

	return questions, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
