package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"animate-prompt/api/internal/animate"
	"animate-prompt/api/internal/keys"
	"animate-prompt/api/internal/logger"
	"animate-prompt/api/internal/prompt"
	"animate-prompt/api/internal/store"
)

// SettingsStore is what the router needs from the settings layer.
type SettingsStore interface {
	Get(ctx context.Context, chatID int64) (store.Settings, error)
	Update(ctx context.Context, chatID int64, fn func(*store.Settings)) (store.Settings, error)
}

type Router struct {
	Bot      *tgbotapi.BotAPI
	Engines  *animate.Engines
	Settings SettingsStore
	Keys     keys.Provider

	inflight sync.Map // chatID -> struct{}
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	msg := upd.Message

	if msg.IsCommand() {
		r.HandleCommand(msg)
		return
	}
	if len(msg.Photo) > 0 || (msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/")) {
		r.acceptImage(msg)
		return
	}
	if msg.Document != nil {
		r.send(msg.Chat.ID, "Please send an image file (JPEG, PNG, WebP…).")
	}
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	ctx := context.Background()
	cid := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		r.send(cid, helpText)
	case "settings":
		s, err := r.Settings.Get(ctx, cid)
		if err != nil {
			r.SendError(cid, err)
			return
		}
		r.sendHTML(cid, formatSettings(s, r.engineFor(s)))
	case "detail":
		if len(args) == 0 {
			s, err := r.Settings.Get(ctx, cid)
			if err != nil {
				r.SendError(cid, err)
				return
			}
			m := tgbotapi.NewMessage(cid, "Prompt detail level:")
			m.ReplyMarkup = makeDetailKeyboard(s.Detail)
			_, _ = r.Bot.Send(m)
			return
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || !prompt.DetailLevel(n).Valid() {
			r.send(cid, "Usage: /detail <1-5>")
			return
		}
		s, err := r.Settings.Update(ctx, cid, func(s *store.Settings) { s.Detail = prompt.DetailLevel(n) })
		if err != nil {
			r.SendError(cid, err)
			return
		}
		r.send(cid, "✅ Detail level: "+s.Detail.Label())
	case "style":
		s, err := r.Settings.Get(ctx, cid)
		if err != nil {
			r.SendError(cid, err)
			return
		}
		m := tgbotapi.NewMessage(cid, "Animation style modifiers (tap to toggle):")
		m.ReplyMarkup = makeStyleKeyboard(s.Style)
		_, _ = r.Bot.Send(m)
	case "key":
		r.handleKeyCommand(ctx, msg, args)
	case "engine":
		r.handleEngineCommand(ctx, cid, args)
	default:
		r.send(cid, "Unknown command. /help")
	}
}

func (r *Router) handleKeyCommand(ctx context.Context, msg *tgbotapi.Message, args []string) {
	cid := msg.Chat.ID
	if len(args) == 0 {
		s, err := r.Settings.Get(ctx, cid)
		if err != nil {
			r.SendError(cid, err)
			return
		}
		r.send(cid, "Your API key: "+keys.Mask(s.APIKey)+"\nUsage: /key <value> | /key reset")
		return
	}

	value := args[0]
	if strings.EqualFold(value, "reset") {
		value = ""
	}
	if _, err := r.Settings.Update(ctx, cid, func(s *store.Settings) { s.APIKey = value }); err != nil {
		r.SendError(cid, err)
		return
	}
	if value == "" {
		r.send(cid, "✅ Personal API key removed; the built-in key is used again.")
		return
	}
	// the key should not stay in the chat history
	_, _ = r.Bot.Request(tgbotapi.NewDeleteMessage(cid, msg.MessageID))
	r.send(cid, "✅ API key saved: "+keys.Mask(value))
}

// handleEngineCommand switches the engine for the chat.
// Formats:
//
//	/engine gemini [model]
//	/engine gpt [model]
func (r *Router) handleEngineCommand(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		s, err := r.Settings.Get(ctx, chatID)
		if err != nil {
			r.SendError(chatID, err)
			return
		}
		r.send(chatID, "Current engine: "+r.engineFor(s)+"\nUsage:\n/engine gemini [model]\n/engine gpt [model]")
		return
	}
	name := strings.ToLower(args[0])
	if _, err := r.Engines.GetEngine(name); err != nil {
		r.send(chatID, "⚠️ "+err.Error())
		return
	}
	var mdl string
	if len(args) > 1 {
		mdl = args[1]
	}
	if _, err := r.Settings.Update(ctx, chatID, func(s *store.Settings) {
		s.Engine = name
		s.Model = mdl
	}); err != nil {
		r.SendError(chatID, err)
		return
	}
	if mdl != "" {
		name += " (" + mdl + ")"
	}
	r.send(chatID, "✅ Engine: "+name)
}

func (r *Router) engineFor(s store.Settings) string {
	e, err := r.Engines.GetEngine(s.Engine)
	if err != nil {
		return s.Engine + " (unavailable)"
	}
	if s.Model != "" {
		return e.Name() + " (" + s.Model + ")"
	}
	return e.Name() + " (" + e.GetModel() + ")"
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		logger.WithError(err).WithField("chat_id", chatID).Warn("telegram send failed")
	}
}

func (r *Router) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := r.Bot.Send(msg); err != nil {
		logger.WithError(err).WithField("chat_id", chatID).Warn("telegram send failed")
	}
}

func (r *Router) SendError(chatID int64, err error) {
	logger.WithError(err).WithField("chat_id", chatID).Error("request failed")
	r.send(chatID, errorText(err))
}

const helpText = `Send me a picture and I'll write an "animate this image…" prompt for text-to-video tools.

Commands:
/detail <1-5> — prompt detail level
/style — toggle 3D, natural effects, anime, green screen
/settings — show current settings
/key <value> — use your own API key (/key reset to remove)
/engine gemini|gpt [model] — choose the model`

func errorText(err error) string {
	switch animate.Kind(err) {
	case "credential":
		return fmt.Sprintf("🔑 The API key is missing or was rejected. Set your own with /key <value>.\n(%v)", err)
	case "empty_response":
		return "🤷 The model returned no text. Please try again or pick another image."
	case "service":
		return fmt.Sprintf("⚠️ Model error: %v", err)
	default:
		return fmt.Sprintf("⚠️ Error: %v", err)
	}
}
