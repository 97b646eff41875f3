package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/studydigest/internal/domain/model"
)

type modelListResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		ContextLength int    `json:"context_length"`
	} `json:"data"`
}

// ListModels fetches the provider's public model catalog. Responses are cached
// in memory and revalidated with ETags, so repeated calls are cheap.
func (c *Client) ListModels(ctx context.Context) ([]model.ProviderModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("creating models request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.catalog.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching models: unexpected status %d", resp.StatusCode)
	}

	var body modelListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding models: %w", err)
	}

	slog.DebugContext(ctx, "model catalog fetched",
		"count", len(body.Data),
		"from_cache", resp.Header.Get(httpcache.XFromCache) == "1",
	)

	models := make([]model.ProviderModel, 0, len(body.Data))
	for _, m := range body.Data {
		name := m.Name
		if name == "" {
			name = m.ID
		}
		models = append(models, model.ProviderModel{
			ID:            m.ID,
			Name:          name,
			ContextLength: m.ContextLength,
		})
	}
	return models, nil
}
