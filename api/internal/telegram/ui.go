package telegram

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"animate-prompt/api/internal/keys"
	"animate-prompt/api/internal/prompt"
	"animate-prompt/api/internal/store"
)

const (
	cbDetail = "detail:"
	cbStyle  = "style:"
)

// one button per level, the current one marked
func makeDetailKeyboard(cur prompt.DetailLevel) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, l := range prompt.Levels() {
		label := l.Label
		if l.Level == cur.Normalize() {
			label = "● " + label
		}
		btn := tgbotapi.NewInlineKeyboardButtonData(label, cbDetail+strconv.Itoa(int(l.Level)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func makeStyleKeyboard(f prompt.StyleFlags) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range prompt.Styles() {
		mark := "▫️ "
		if f.Has(s.ID) {
			mark = "✅ "
		}
		btn := tgbotapi.NewInlineKeyboardButtonData(mark+s.Label+" — "+s.Description, cbStyle+s.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatSettings(s store.Settings, engine string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Detail:</b> %d — %s\n", s.Detail.Normalize(), html.EscapeString(s.Detail.Label()))
	styles := s.Style.Enabled()
	if len(styles) == 0 {
		b.WriteString("<b>Styles:</b> none\n")
	} else {
		fmt.Fprintf(&b, "<b>Styles:</b> %s\n", html.EscapeString(strings.Join(styles, ", ")))
	}
	fmt.Fprintf(&b, "<b>Engine:</b> %s\n", html.EscapeString(engine))
	fmt.Fprintf(&b, "<b>API key:</b> %s", html.EscapeString(keys.Mask(s.APIKey)))
	return b.String()
}

// formatPrompt renders the result so it can be copied with one tap.
func formatPrompt(text string, s store.Settings) string {
	text = truncate(text, 3900)
	styles := "none"
	if e := s.Style.Enabled(); len(e) > 0 {
		styles = strings.Join(e, ", ")
	}
	return fmt.Sprintf("🎬 <b>Animation prompt</b> (detail %d, styles: %s)\n\n<code>%s</code>",
		s.Detail.Normalize(), html.EscapeString(styles), html.EscapeString(text))
}

// truncate cuts text to at most n bytes on a rune boundary and marks the cut.
func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n] + "…"
}
