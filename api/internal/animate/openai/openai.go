package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"animate-prompt/api/internal/animate"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultBaseURL = "https://api.openai.com/v1"
)

type Engine struct {
	Model   string
	BaseURL string
	httpc   *http.Client
}

// New builds an engine with no client-side timeout; callers bound the call
// through the context.
func New(model string) *Engine {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Engine{
		Model:   model,
		BaseURL: DefaultBaseURL,
		httpc:   &http.Client{},
	}
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Generate(ctx context.Context, in animate.Input) (string, error) {
	model := e.Model
	if m := strings.TrimSpace(in.Model); m != "" {
		model = m
	}
	dataURL := "data:" + in.MIME + ";base64," + base64.StdEncoding.EncodeToString(in.Image)

	body := map[string]any{
		"model": model,
		"messages": []any{
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": dataURL, "detail": "high"}},
					map[string]any{"type": "text", "text": in.Instruction},
				},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(e.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+in.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai %d: %s", resp.StatusCode, errorMessage(resp.StatusCode, x))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("openai: bad JSON: %w", err)
	}
	if len(raw.Choices) == 0 {
		return "", nil
	}
	return raw.Choices[0].Message.Content, nil
}

// errorMessage prefers the API's own error text; 401 gets an explicit marker so
// the analyzer can recognise a rejected key.
func errorMessage(status int, body []byte) string {
	var er struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
		msg = er.Error.Message
	}
	if status == http.StatusUnauthorized && !strings.Contains(strings.ToLower(msg), "authentication") {
		msg = "authentication failed: " + msg
	}
	return msg
}
