package driven

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ericfisherdev/studydigest/internal/domain/model"
)

// CompletionClient defines the driven port for one chat-completion round trip
// against the language-model provider.
type CompletionClient interface {
	// Complete sends messages authenticated with apiKey and returns the text of
	// the first choice. Provider-side failures are reported as *ProviderError.
	Complete(ctx context.Context, apiKey string, messages []model.Message) (string, error)
}

// ModelCatalog lists the models the provider currently offers.
type ModelCatalog interface {
	ListModels(ctx context.Context) ([]model.ProviderModel, error)
}

// ProviderError describes a failed completion call. HTTPStatus is zero when the
// provider answered with a success status but the payload signalled an error
// or carried no choices.
type ProviderError struct {
	Message    string
	Code       string
	HTTPStatus int
}

func (e *ProviderError) Error() string {
	switch {
	case e.HTTPStatus != 0 && e.Code != "":
		return fmt.Sprintf("provider error (status %d, code %s): %s", e.HTTPStatus, e.Code, e.Message)
	case e.HTTPStatus != 0:
		return fmt.Sprintf("provider error (status %d): %s", e.HTTPStatus, e.Message)
	case e.Code != "":
		return fmt.Sprintf("provider error (code %s): %s", e.Code, e.Message)
	default:
		return "provider error: " + e.Message
	}
}

// IsCredentialFailure reports whether the failure is attributable to the
// credential itself: rejected (401), out of credit (402) or rate limited (429).
func (e *ProviderError) IsCredentialFailure() bool {
	switch e.HTTPStatus {
	case http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

// IsRateLimited reports whether the provider rejected the call with 429.
func (e *ProviderError) IsRateLimited() bool {
	return e.HTTPStatus == http.StatusTooManyRequests
}
