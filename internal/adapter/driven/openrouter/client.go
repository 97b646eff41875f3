// Package openrouter implements the CompletionClient and ModelCatalog ports
// against OpenRouter's OpenAI-compatible API.
package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ericfisherdev/studydigest/internal/domain/model"
	"github.com/ericfisherdev/studydigest/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CompletionClient = (*Client)(nil)
	_ driven.ModelCatalog     = (*Client)(nil)
)

// Defaults applied by NewClient for zero Config fields.
const (
	DefaultBaseURL     = "https://openrouter.ai/api/v1"
	DefaultModel       = "openai/gpt-4o-mini"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 4000
)

// Config holds the fixed request parameters. The API key is not part of it;
// each call supplies its own credential.
type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	// AppURL and AppName identify the application to OpenRouter through the
	// HTTP-Referer and X-Title headers.
	AppURL  string
	AppName string
	// HTTPClient is used for completion calls. Nil selects http.DefaultClient.
	HTTPClient *http.Client
}

// Client performs chat completions and lists the provider's models.
type Client struct {
	api     openai.Client
	catalog *http.Client
	cfg     Config
}

// NewClient creates a Client with the following transport setup:
//  1. openai-go for chat completions, with SDK retries disabled since the
//     caller rotates credentials between attempts
//  2. httpcache (ETag-based conditional request caching) for the model catalog
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL + "/"),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.AppURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.AppURL))
	}
	if cfg.AppName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.AppName))
	}

	catalogTransport := httpcache.NewMemoryCacheTransport()
	if cfg.HTTPClient != nil && cfg.HTTPClient.Transport != nil {
		catalogTransport.Transport = cfg.HTTPClient.Transport
	}

	return &Client{
		api:     openai.NewClient(opts...),
		catalog: &http.Client{Transport: catalogTransport, Timeout: 30 * time.Second},
		cfg:     cfg,
	}
}

// Complete sends one chat-completion request authenticated with apiKey and
// returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, apiKey string, messages []model.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       c.cfg.Model,
		Messages:    convertMessages(messages),
		Temperature: openai.Float(c.cfg.Temperature),
		MaxTokens:   openai.Int(int64(c.cfg.MaxTokens)),
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params, option.WithAPIKey(apiKey))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", statusError(apiErr)
		}
		return "", fmt.Errorf("openrouter chat completion: %w", err)
	}

	if perr := payloadError(resp.RawJSON()); perr != nil {
		return "", perr
	}
	if len(resp.Choices) == 0 {
		return "", &driven.ProviderError{Message: "no choices returned"}
	}

	slog.DebugContext(ctx, "chat completion finished",
		"model", c.cfg.Model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason,
	)

	return resp.Choices[0].Message.Content, nil
}

func convertMessages(msgs []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case model.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}

// statusError maps a non-2xx SDK error to a ProviderError. The provider's
// message is kept for logs; it is never shown to end users.
func statusError(apiErr *openai.Error) *driven.ProviderError {
	msg := apiErr.Message
	if msg == "" {
		msg = http.StatusText(apiErr.StatusCode)
	}
	return &driven.ProviderError{
		Message:    msg,
		Code:       apiErr.Code,
		HTTPStatus: apiErr.StatusCode,
	}
}

// errorEnvelope is the error object OpenRouter may embed in a 200 response.
type errorEnvelope struct {
	Error *struct {
		Message string          `json:"message"`
		Code    json.RawMessage `json:"code"`
	} `json:"error"`
}

// payloadError returns a ProviderError when a successful response body carries
// an explicit error object.
func payloadError(raw string) *driven.ProviderError {
	if raw == "" || !strings.Contains(raw, `"error"`) {
		return nil
	}

	var env errorEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.Error == nil {
		return nil
	}

	msg := env.Error.Message
	if msg == "" {
		msg = "provider returned an error"
	}
	code := strings.Trim(string(env.Error.Code), `"`)
	if code == "null" {
		code = ""
	}
	return &driven.ProviderError{Message: msg, Code: code}
}
