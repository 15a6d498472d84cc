// Package questions talks to the external question-generation service.
// The service is request/response only: topic and count in, a list of
// generated questions out. Everything else about it (prompting, models,
// translation) is its own business.
package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quizterra/quizterra/internal/game"
)

// Generator produces a question bank for a topic. Implemented by Client in
// production and by stubs in tests.
type Generator interface {
	Generate(ctx context.Context, topic, difficulty string, count int) ([]game.Question, error)
}

const (
	minCount = 1
	maxCount = 20
)

// Client is the HTTP client for the generation service.
type Client struct {
	url   string
	model string
	http  *http.Client
}

func NewClient(url, model string, timeout time.Duration) *Client {
	return &Client{
		url:   url,
		model: model,
		http:  &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty,omitempty"`
	Count      int    `json:"count"`
	Model      string `json:"model,omitempty"`
}

type generateResponse struct {
	Questions []game.Question `json:"questions"`
}

// Generate requests count questions for topic. A provider that errors,
// returns a non-2xx status, or hands back zero questions for a positive
// count fails with game.ErrGenerationFailed — the caller must leave the
// game in lobby.
func (c *Client) Generate(ctx context.Context, topic, difficulty string, count int) ([]game.Question, error) {
	if count < minCount || count > maxCount {
		return nil, fmt.Errorf("%w: count %d out of range [%d,%d]",
			game.ErrGenerationFailed, count, minCount, maxCount)
	}

	body, err := json.Marshal(generateRequest{
		Topic:      topic,
		Difficulty: difficulty,
		Count:      count,
		Model:      c.model,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: provider returned %d", game.ErrGenerationFailed, resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", game.ErrGenerationFailed, err)
	}
	if len(out.Questions) == 0 {
		return nil, fmt.Errorf("%w: provider returned zero questions for count %d",
			game.ErrGenerationFailed, count)
	}
	return out.Questions, nil
}
