package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"animate-prompt/api/internal/animate"
	"animate-prompt/api/internal/prompt"
)

func newTestEngine(url string) *Engine {
	e := New("")
	e.BaseURL = url
	return e
}

func TestGenerateSendsImageAndInstruction(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Content []map[string]any `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  animate this image a cat yawns  "}}]}`))
	}))
	defer server.Close()

	text, err := newTestEngine(server.URL).Generate(context.Background(), animate.Input{
		APIKey:      "sk-test",
		Image:       []byte("png!"),
		MIME:        "image/png",
		Instruction: "describe motion",
		Model:       "gpt-4o",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "  animate this image a cat yawns  " {
		t.Errorf("text = %q", text)
	}
	if got.Model != "gpt-4o" {
		t.Errorf("model = %q, want override", got.Model)
	}
	if len(got.Messages) != 1 || len(got.Messages[0].Content) != 2 {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
	img := got.Messages[0].Content[0]["image_url"].(map[string]any)
	if url, _ := img["url"].(string); !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("image url = %q", url)
	}
	if got.Messages[0].Content[1]["text"] != "describe motion" {
		t.Errorf("text part = %v", got.Messages[0].Content[1])
	}
}

func TestGenerateThroughAnalyzer(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"bad key", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided: sk-xx"}}`, animate.ErrCredential},
		{"unauthorized plain", http.StatusUnauthorized, `nope`, animate.ErrCredential},
		{"quota", http.StatusTooManyRequests, `{"error":{"message":"quota exceeded"}}`, animate.ErrService},
		{"no choices", http.StatusOK, `{"choices":[]}`, animate.ErrEmptyResponse},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":""}}]}`, animate.ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := animate.NewAnalyzer(newTestEngine(server.URL)).Analyze(context.Background(), animate.Request{
				Image:  []byte{1},
				MIME:   "image/jpeg",
				Detail: prompt.DetailSimple,
				APIKey: "sk-test",
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestQuotaMessagePassedThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	_, err := animate.NewAnalyzer(newTestEngine(server.URL)).Analyze(context.Background(), animate.Request{
		Image: []byte{1}, MIME: "image/jpeg", APIKey: "sk-test",
	})
	var ae *animate.Error
	if !errors.As(err, &ae) {
		t.Fatalf("err = %T", err)
	}
	if ae.Message != "openai 429: quota exceeded" {
		t.Errorf("Message = %q", ae.Message)
	}
}
