package animate

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"animate-prompt/api/internal/logger"
	"animate-prompt/api/internal/prompt"
)

// MissingKey is the placeholder a credential source yields when no key is configured.
const MissingKey = "MISSING_API_KEY"

// Request is everything one analysis needs. It is built per user action and
// never reused.
type Request struct {
	Image  []byte
	MIME   string
	Detail prompt.DetailLevel
	Style  prompt.StyleFlags
	APIKey string
	Model  string // optional engine model override
}

// Analyzer turns a Request into an animation prompt with one model call.
type Analyzer struct {
	eng Engine
}

func NewAnalyzer(eng Engine) *Analyzer {
	return &Analyzer{eng: eng}
}

func (a *Analyzer) Engine() Engine { return a.eng }

// Analyze validates the credential, sends image + composed instruction to the
// engine exactly once and returns the trimmed text. Failures are *Error values
// classified as ErrCredential, ErrEmptyResponse, ErrService or ErrUnknown.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (string, error) {
	name := a.eng.Name()
	if reason := checkCredential(req.APIKey); reason != "" {
		return "", credentialError(name, reason)
	}

	log := logger.WithFields(logrus.Fields{
		"engine": name,
		"model":  a.eng.GetModel(),
		"detail": int(req.Detail.Normalize()),
		"styles": req.Style.Enabled(),
		"mime":   req.MIME,
		"bytes":  len(req.Image),
	})
	if v := ctx.Value(requestIDKey{}); v != nil {
		log = log.WithField("request_id", v)
	}

	start := time.Now()
	text, err := a.eng.Generate(ctx, Input{
		APIKey:      req.APIKey,
		Image:       req.Image,
		MIME:        req.MIME,
		Instruction: prompt.Instruction(req.Detail, req.Style),
		Model:       req.Model,
	})
	log = log.WithField("took", time.Since(start).String())
	if err != nil {
		e := classify(name, err)
		log.WithError(err).WithField("class", Kind(e)).Warn("model call failed")
		return "", e
	}

	text = strings.TrimSpace(text)
	if text == "" {
		log.Warn("model returned no text")
		return "", emptyResponseError(name)
	}
	log.WithField("chars", len(text)).Info("animation prompt generated")
	return text, nil
}

func checkCredential(key string) string {
	switch {
	case key == "":
		return "API key is empty"
	case key == MissingKey:
		return "API key is not configured"
	case strings.TrimSpace(key) == "":
		return "API key is blank"
	}
	return ""
}

type requestIDKey struct{}

// WithRequestID attaches a request id that Analyze adds to its log entries.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
