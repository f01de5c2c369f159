package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"animate-prompt/api/internal/animate"
	"animate-prompt/api/internal/logger"
	"animate-prompt/api/internal/prompt"
	"animate-prompt/api/internal/util"
)

// --- PROMPT ------------------------------------------------------------------

type promptReq struct {
	LLMName     string            `json:"llm_name"`
	Model       string            `json:"model"`
	Image       string            `json:"image"` // base64 or data:URL
	MIME        string            `json:"mime"`
	DetailLevel int               `json:"detail_level"`
	Style       prompt.StyleFlags `json:"style"`
	APIKey      string            `json:"api_key"`
}

type promptResp struct {
	Prompt    string `json:"prompt"`
	Engine    string `json:"engine"`
	Model     string `json:"model"`
	Detail    int    `json:"detail_level"`
	RequestID string `json:"request_id,omitempty"`
}

func (h *Handle) Prompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req promptReq
	// base64 inflates by 4/3; leave room for the JSON envelope
	limit := h.maxUpload*4/3 + 64<<10
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "too_large", "request body exceeds "+strconv.FormatInt(tooBig.Limit, 10)+" bytes")
			return
		}
		writeError(w, r, http.StatusBadRequest, "bad_request", "bad json: "+err.Error())
		return
	}

	img, hintMIME, err := util.DecodeBase64MaybeDataURL(req.Image)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "bad image: "+err.Error())
		return
	}
	if int64(len(img)) > h.maxUpload {
		writeError(w, r, http.StatusRequestEntityTooLarge, "too_large", "image exceeds "+strconv.FormatInt(h.maxUpload, 10)+" bytes")
		return
	}
	mime := util.PickMIME(req.MIME, hintMIME, img)
	if !util.IsImageMIME(mime) {
		writeError(w, r, http.StatusBadRequest, "bad_request", "unsupported file type "+mime+"; please upload an image")
		return
	}

	engine, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	key := req.APIKey
	if key == "" {
		if key, err = h.keys.APIKey(r.Context(), 0, engine.Name()); err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal", "credential lookup: "+err.Error())
			return
		}
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	detail := prompt.DetailLevel(req.DetailLevel)
	if req.DetailLevel == 0 {
		detail = prompt.DefaultDetail
	}
	text, err := animate.NewAnalyzer(engine).Analyze(ctx, animate.Request{
		Image:  img,
		MIME:   mime,
		Detail: detail,
		Style:  req.Style,
		APIKey: key,
		Model:  req.Model,
	})
	if err != nil {
		msg := err.Error()
		var ae *animate.Error
		if errors.As(err, &ae) && ae.Message != "" {
			msg = ae.Message
		}
		writeError(w, r, animate.StatusCode(err), animate.Kind(err), msg)
		return
	}

	model := engine.GetModel()
	if req.Model != "" {
		model = req.Model
	}
	writeJSON(w, http.StatusOK, promptResp{
		Prompt:    text,
		Engine:    engine.Name(),
		Model:     model,
		Detail:    int(detail.Normalize()),
		RequestID: RequestID(r.Context()),
	})
}

// requestContext applies an optional caller deadline (X-Request-Timeout or
// ?timeoutSec=, in seconds); without one the call runs until the client goes away.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	ts := r.Header.Get("X-Request-Timeout")
	if ts == "" {
		ts = r.URL.Query().Get("timeoutSec")
	}
	ctx := animate.WithRequestID(r.Context(), RequestID(r.Context()))
	if v, _ := strconv.Atoi(ts); v > 0 {
		return context.WithTimeout(ctx, time.Duration(v)*time.Second)
	}
	if ts != "" {
		logger.WithField("value", ts).Debug("ignoring bad request timeout")
	}
	return context.WithCancel(ctx)
}

// --- OPTIONS -----------------------------------------------------------------

type optionsResp struct {
	DetailLevels []prompt.LevelInfo `json:"detail_levels"`
	DefaultLevel int                `json:"default_detail_level"`
	Styles       []prompt.StyleInfo `json:"styles"`
	OutputPrefix string             `json:"output_prefix"`
}

func (h *Handle) Options(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, optionsResp{
		DetailLevels: prompt.Levels(),
		DefaultLevel: int(prompt.DefaultDetail),
		Styles:       prompt.Styles(),
		OutputPrefix: prompt.OutputPrefix,
	})
}
