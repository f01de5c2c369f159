package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"animate-prompt/api/internal/animate"
	"animate-prompt/api/internal/util"
)

var httpc = &http.Client{Timeout: 60 * time.Second}

// acceptImage runs one analysis for a photo or image document. A chat gets a
// single analysis at a time; extra images are refused, not queued.
func (r *Router) acceptImage(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	if _, busy := r.inflight.LoadOrStore(cid, struct{}{}); busy {
		r.send(cid, "⏳ Still working on your previous image, please wait.")
		return
	}
	defer r.inflight.Delete(cid)

	fileID, declaredMIME := imageFile(msg)
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		r.SendError(cid, fmt.Errorf("get file: %w", err))
		return
	}
	img, err := download(url)
	if err != nil {
		r.SendError(cid, fmt.Errorf("download: %w", err))
		return
	}
	mime := util.PickMIME(declaredMIME, "", img)
	if !util.IsImageMIME(mime) {
		r.send(cid, "Please send an image file (JPEG, PNG, WebP…).")
		return
	}

	ctx := context.Background()
	s, err := r.Settings.Get(ctx, cid)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	eng, err := r.Engines.GetEngine(s.Engine)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	key, err := r.Keys.APIKey(ctx, cid, eng.Name())
	if err != nil {
		r.SendError(cid, err)
		return
	}

	_, _ = r.Bot.Request(tgbotapi.NewChatAction(cid, tgbotapi.ChatTyping))
	text, err := animate.NewAnalyzer(eng).Analyze(ctx, animate.Request{
		Image:  img,
		MIME:   mime,
		Detail: s.Detail,
		Style:  s.Style,
		APIKey: key,
		Model:  s.Model,
	})
	if err != nil {
		r.SendError(cid, err)
		return
	}
	r.sendHTML(cid, formatPrompt(text, s))
}

// imageFile picks the largest photo size, or the document.
func imageFile(msg *tgbotapi.Message) (fileID, mime string) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, "image/jpeg"
	}
	return msg.Document.FileID, msg.Document.MimeType
}

func download(url string) ([]byte, error) {
	resp, err := httpc.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
