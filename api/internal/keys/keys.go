// Package keys supplies model credentials to the front ends. The analyzer only
// validates what it is given; where the key comes from is decided here.
package keys

import (
	"context"
	"strings"

	"animate-prompt/api/internal/animate"
)

// Provider returns the credential to use for owner (a chat id; 0 for anonymous
// callers) when talking to engine.
type Provider interface {
	APIKey(ctx context.Context, owner int64, engine string) (string, error)
}

// Static holds the built-in keys per engine name ("gemini", "gpt").
type Static map[string]string

func (s Static) APIKey(_ context.Context, _ int64, engine string) (string, error) {
	if k := strings.TrimSpace(s[canonical(engine)]); k != "" {
		return k, nil
	}
	return animate.MissingKey, nil
}

// UserKeys looks up a key a user saved for themselves ("" when none).
type UserKeys interface {
	UserKey(ctx context.Context, owner int64) (string, error)
}

// Override prefers a user's own key and falls back to Default.
type Override struct {
	Users   UserKeys
	Default Provider
}

func (o Override) APIKey(ctx context.Context, owner int64, engine string) (string, error) {
	if o.Users != nil && owner != 0 {
		k, err := o.Users.UserKey(ctx, owner)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(k) != "" {
			return k, nil
		}
	}
	return o.Default.APIKey(ctx, owner, engine)
}

func canonical(engine string) string {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "gpt", "openai":
		return "gpt"
	default:
		return "gemini"
	}
}

// Mask hides all but the last four characters of a key.
func Mask(key string) string {
	key = strings.TrimSpace(key)
	if key == "" || key == animate.MissingKey {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("•", len(key))
	}
	return strings.Repeat("•", 8) + key[len(key)-4:]
}
