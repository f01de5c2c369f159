package handle

import (
	"encoding/json"
	"net/http"

	"animate-prompt/api/internal/animate"
	"animate-prompt/api/internal/httpserver"
	"animate-prompt/api/internal/keys"
)

type Handle struct {
	engs      *animate.Engines
	keys      keys.Provider
	maxUpload int64
}

func New(engs *animate.Engines, kp keys.Provider, maxUpload int64) *Handle {
	return &Handle{
		engs:      engs,
		keys:      kp,
		maxUpload: maxUpload,
	}
}

// Routes registers every endpoint on mux.
func (h *Handle) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", httpserver.Health)
	mux.HandleFunc("/v1/animate/prompt", h.Prompt)
	mux.HandleFunc("/v1/animate/options", h.Options)
}

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, kind, msg string) {
	writeJSON(w, code, errorBody{Error: kind, Message: msg, RequestID: RequestID(r.Context())})
}
