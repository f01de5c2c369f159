package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"animate-prompt/api/internal/prompt"
	"animate-prompt/api/internal/store"
)

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack

	ctx := context.Background()
	switch {
	case strings.HasPrefix(cb.Data, cbDetail):
		n, err := strconv.Atoi(strings.TrimPrefix(cb.Data, cbDetail))
		if err != nil || !prompt.DetailLevel(n).Valid() {
			return
		}
		s, err := r.Settings.Update(ctx, cid, func(s *store.Settings) { s.Detail = prompt.DetailLevel(n) })
		if err != nil {
			r.SendError(cid, err)
			return
		}
		_, _ = r.Bot.Send(tgbotapi.NewEditMessageReplyMarkup(cid, cb.Message.MessageID, makeDetailKeyboard(s.Detail)))
	case strings.HasPrefix(cb.Data, cbStyle):
		id := strings.TrimPrefix(cb.Data, cbStyle)
		if _, err := prompt.ParseStyles(id); err != nil {
			return
		}
		s, err := r.Settings.Update(ctx, cid, func(s *store.Settings) {
			s.Style, _ = s.Style.Toggle(id)
		})
		if err != nil {
			r.SendError(cid, err)
			return
		}
		_, _ = r.Bot.Send(tgbotapi.NewEditMessageReplyMarkup(cid, cb.Message.MessageID, makeStyleKeyboard(s.Style)))
	}
}
