package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"animate-prompt/api/internal/animate"
)

const DefaultModel = "gemini-2.5-flash"

type Engine struct {
	Model string
	// Endpoint overrides the API endpoint (empty means the SDK default).
	Endpoint string
}

// New returns an engine for model; endpoint may be empty for the SDK default.
func New(model, endpoint string) *Engine {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Engine{Model: model, Endpoint: strings.TrimSpace(endpoint)}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Generate sends the image and instruction as one user turn. The client is
// built per call because the credential belongs to the request, not the engine.
func (e *Engine) Generate(ctx context.Context, in animate.Input) (string, error) {
	cl, err := genai.NewClient(ctx, e.clientOptions(in.APIKey)...)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	model := e.Model
	if m := strings.TrimSpace(in.Model); m != "" {
		model = m
	}
	m := cl.GenerativeModel(model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}

	resp, err := m.GenerateContent(ctx, parts(in)...)
	if err != nil {
		return "", err
	}
	return firstText(resp), nil
}

func (e *Engine) clientOptions(apiKey string) []option.ClientOption {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if e.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(e.Endpoint))
	}
	return opts
}

func parts(in animate.Input) []genai.Part {
	return []genai.Part{
		&genai.Blob{MIMEType: in.MIME, Data: in.Image},
		genai.Text(in.Instruction),
	}
}

// firstText joins the text parts of the first candidate that has any.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
