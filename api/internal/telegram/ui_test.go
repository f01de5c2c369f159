package telegram

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"animate-prompt/api/internal/animate"
	"animate-prompt/api/internal/prompt"
	"animate-prompt/api/internal/store"
)

func TestMakeStyleKeyboard(t *testing.T) {
	kb := makeStyleKeyboard(prompt.StyleFlags{Anime: true})
	if len(kb.InlineKeyboard) != 4 {
		t.Fatalf("rows = %d, want 4", len(kb.InlineKeyboard))
	}
	for i, s := range prompt.Styles() {
		btn := kb.InlineKeyboard[i][0]
		if btn.CallbackData == nil || *btn.CallbackData != cbStyle+s.ID {
			t.Errorf("row %d callback = %v", i, btn.CallbackData)
		}
		checked := strings.HasPrefix(btn.Text, "✅")
		if checked != (s.ID == prompt.StyleAnime) {
			t.Errorf("row %d (%s) checked = %v", i, s.ID, checked)
		}
	}
}

func TestMakeDetailKeyboard(t *testing.T) {
	kb := makeDetailKeyboard(prompt.DetailLevel(0))
	if len(kb.InlineKeyboard) != 5 {
		t.Fatalf("rows = %d", len(kb.InlineKeyboard))
	}
	for i, row := range kb.InlineKeyboard {
		marked := strings.HasPrefix(row[0].Text, "● ")
		if marked != (i == 2) {
			t.Errorf("row %d marked = %v; out-of-range level must mark level 3", i, marked)
		}
	}
	if got := *kb.InlineKeyboard[4][0].CallbackData; got != "detail:5" {
		t.Errorf("callback = %q", got)
	}
}

func TestFormatPromptEscapes(t *testing.T) {
	s := store.Settings{Detail: prompt.DetailDetailed, Style: prompt.StyleFlags{GreenScreen: true}}
	out := formatPrompt("animate this image <b>cat</b> & dog", s)
	if !strings.Contains(out, "&lt;b&gt;cat&lt;/b&gt; &amp; dog") {
		t.Errorf("text not escaped: %s", out)
	}
	if !strings.Contains(out, "detail 4") || !strings.Contains(out, "greenscreen") {
		t.Errorf("header missing settings: %s", out)
	}

	long := strings.Repeat("a", 5000)
	if n := len(formatPrompt(long, s)); n > 4096 {
		t.Errorf("message too long for telegram: %d", n)
	}
}

func TestFormatSettingsMasksKey(t *testing.T) {
	out := formatSettings(store.Settings{Detail: 1, APIKey: "AIzaSecretKey9876"}, "gemini (gemini-2.5-flash)")
	if strings.Contains(out, "Secret") {
		t.Errorf("key leaked: %s", out)
	}
	if !strings.Contains(out, "9876") || !strings.Contains(out, "Styles:</b> none") {
		t.Errorf("unexpected settings text: %s", out)
	}
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&animate.Error{Err: animate.ErrCredential}, "/key"},
		{&animate.Error{Err: animate.ErrEmptyResponse}, "no text"},
		{&animate.Error{Err: animate.ErrService, Message: "quota exceeded"}, "quota exceeded"},
		{errors.New("db down"), "db down"},
	}
	for _, tt := range tests {
		if got := errorText(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("errorText(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}
}

func TestImageFile(t *testing.T) {
	msg := &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "big"}}}
	if id, mt := imageFile(msg); id != "big" || mt != "image/jpeg" {
		t.Errorf("photo -> %q %q", id, mt)
	}
	msg = &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc", MimeType: "image/png"}}
	if id, mt := imageFile(msg); id != "doc" || mt != "image/png" {
		t.Errorf("document -> %q %q", id, mt)
	}
}

func TestFormatPromptMultiByteCut(t *testing.T) {
	s := store.Settings{Detail: prompt.DetailModerate}
	for _, text := range []string{
		"a" + strings.Repeat("é", 2000),
		"ab" + strings.Repeat("日", 1500),
		strings.Repeat("🎬", 1200),
	} {
		out := formatPrompt(text, s)
		if !utf8.ValidString(out) {
			t.Errorf("formatPrompt produced invalid UTF-8 for %d-byte input", len(text))
		}
		if !strings.Contains(out, "…</code>") {
			t.Errorf("long text should be marked as cut")
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc…"},
		{"aé", 2, "a…"},
		{"日本", 4, "日…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
