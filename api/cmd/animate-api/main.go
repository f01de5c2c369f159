package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"animate-prompt/api/internal/animate"
	"animate-prompt/api/internal/animate/gemini"
	"animate-prompt/api/internal/animate/openai"
	"animate-prompt/api/internal/config"
	handle "animate-prompt/api/internal/handle"
	"animate-prompt/api/internal/httpserver"
	"animate-prompt/api/internal/keys"
	"animate-prompt/api/internal/logger"
)

func main() {
	cfg := config.Load()

	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	} else if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8000"
	}

	engines := &animate.Engines{
		Gemini:  gemini.New(cfg.GeminiModel, cfg.GeminiEndpoint),
		OpenAI:  openai.New(cfg.OpenAIModel),
		Default: cfg.DefaultEngine,
	}
	builtin := keys.Static{
		"gemini": cfg.GeminiAPIKey,
		"gpt":    cfg.OpenAIAPIKey,
	}

	mux := http.NewServeMux()
	handle.New(engines, builtin, cfg.MaxUploadBytes).Routes(mux)
	h := handle.WithRequestID(handle.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, mux))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	logger.WithField("engine", engines.Default).Info("animate-api starting")
	if err := httpserver.Run(ctx, addr, h); err != nil {
		logger.WithError(err).Fatal("http server")
	}
}
