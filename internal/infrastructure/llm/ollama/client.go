package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/noteground/noteground/internal/core/domain"
)

// Client talks to an Ollama-compatible generation endpoint. The per-call
// timeout lives in the resilient wrapper, not here, so a retry gets a fresh
// deadline.
type Client struct {
	baseURL      string
	defaultModel string
	httpClient   *http.Client
}

func New(baseURL, defaultModel string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		defaultModel: defaultModel,
		httpClient:   &http.Client{},
	}
}

// Generate produces raw completion text for the given model and prompt. The
// output is untrusted; parsing and verification happen in the core.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		model = c.defaultModel
	}
	return c.generate(ctx, map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
	})
}

// TagExtractor derives note tags through the same backend using a strict-JSON
// prompt.
type TagExtractor struct {
	client *Client
}

func NewTagExtractor(client *Client) *TagExtractor {
	return &TagExtractor{client: client}
}

func (e *TagExtractor) ExtractTags(ctx context.Context, content string) (domain.TagExtraction, error) {
	respText, err := e.client.generate(ctx, map[string]any{
		"model":  e.client.defaultModel,
		"prompt": buildTagPrompt(content),
		"stream": false,
		"format": "json",
	})
	if err != nil {
		return domain.TagExtraction{}, err
	}

	var result domain.TagExtraction
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &result); err != nil {
		return domain.TagExtraction{}, fmt.Errorf("parse tag extraction json: %w", err)
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}
	return result, nil
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
