package animate

import (
	"context"
	"errors"
	"strings"
)

// Input is the single payload an engine sends to its model.
type Input struct {
	APIKey      string
	Image       []byte
	MIME        string
	Instruction string
	Model       string // overrides the engine default when set
}

// Engine issues one call to a vision model and returns its raw text output
// ("" when the response carries no text).
type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, in Input) (string, error)
}

type Engines struct {
	Gemini Engine
	OpenAI Engine

	Default string // engine used for an empty name; Gemini when unset
}

// GetEngine resolves a front-end engine name; "" picks Default.
func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = e.Default
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gemini":
		if e.Gemini != nil {
			return e.Gemini, nil
		}
	case "gpt", "openai":
		if e.OpenAI != nil {
			return e.OpenAI, nil
		}
	default:
		return nil, errors.New("unknown llm_name; use 'gemini' or 'gpt'")
	}
	return nil, errors.New("engine " + llmName + " is not configured")
}
