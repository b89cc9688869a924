package safety

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ModerationClient calls an OpenAI-compatible moderation endpoint.
type ModerationClient struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

func NewModerationClient(url, apiKey, model string) *ModerationClient {
	return &ModerationClient{
		url:    url,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged bool `json:"flagged"`
	} `json:"results"`
}

// Flagged reports whether the first moderation result is flagged.
func (c *ModerationClient) Flagged(ctx context.Context, text string) (bool, error) {
	jsonData, err := json.Marshal(moderationRequest{Model: c.model, Input: text})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonData))
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("moderation request failed: %d, %s", resp.StatusCode, string(body))
	}

	var out moderationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("failed to decode moderation response: %w", err)
	}
	if len(out.Results) == 0 {
		return false, fmt.Errorf("moderation response has no results")
	}
	return out.Results[0].Flagged, nil
}
