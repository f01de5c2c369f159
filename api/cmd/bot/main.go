package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"golang.org/x/sync/errgroup"

	"animate-prompt/api/internal/animate"
	"animate-prompt/api/internal/animate/gemini"
	"animate-prompt/api/internal/animate/openai"
	"animate-prompt/api/internal/config"
	"animate-prompt/api/internal/httpserver"
	"animate-prompt/api/internal/keys"
	"animate-prompt/api/internal/logger"
	"animate-prompt/api/internal/store"
	"animate-prompt/api/internal/telegram"
)

func main() {
	cfg := config.Load()

	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	} else if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8080"
	}
	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		logger.Logger.Fatal("TELEGRAM_BOT_TOKEN is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Postgres ---
	dsn := resolveDSN(cfg.DatabaseURL, os.Getenv)
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		logger.WithError(err).Fatal("sql.Open")
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	{
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := db.PingContext(pctx)
		if err == nil {
			err = store.NewSettingsRepo(db).EnsureSchema(pctx)
		}
		cancel()
		if err != nil {
			logger.WithError(err).Fatal("db init")
		}
		logger.WithField("db", safeDSNSummary(dsn)).Info("db connected")
	}

	settings := store.NewCachedSettings(store.NewSettingsRepo(db), cfg.SettingsCacheTTL)

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.WithError(err).Fatal("telegram")
	}
	bot.Debug = false

	r := &telegram.Router{
		Bot: bot,
		Engines: &animate.Engines{
			Gemini:  gemini.New(cfg.GeminiModel, cfg.GeminiEndpoint),
			OpenAI:  openai.New(cfg.OpenAIModel),
			Default: cfg.DefaultEngine,
		},
		Settings: settings,
		Keys: keys.Override{
			Users:   settings,
			Default: keys.Static{"gemini": cfg.GeminiAPIKey, "gpt": cfg.OpenAIAPIKey},
		},
	}

	// Webhook registration goes to DefaultServeMux, so health lives there too.
	http.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		hctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(hctx); err != nil {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
			return
		}
		httpserver.Health(w, req)
	})

	addr := "0.0.0.0:" + cfg.Port
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpserver.Run(gctx, addr, http.DefaultServeMux) })

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		updates, err := startWebhook(bot, webhookURL)
		if err != nil {
			logger.WithError(err).Fatal("webhook")
		}
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case upd, ok := <-updates:
					if !ok {
						logger.Warn("webhook updates channel closed")
						return nil
					}
					go r.HandleUpdate(upd)
				}
			}
		})
	} else {
		g.Go(func() error {
			runPolling(gctx, bot, func(upd tgbotapi.Update) { go r.HandleUpdate(upd) })
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("bot stopped")
	}
	logger.Info("bot stopped")
}

// ---------------- Modes -----------------

func startWebhook(bot *tgbotapi.BotAPI, baseURL string) (tgbotapi.UpdatesChannel, error) {
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return nil, err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return nil, fmt.Errorf("set webhook: %w", err)
	}
	logger.WithField("path", path).Info("webhook registered")
	// registers the handler on DefaultServeMux
	return bot.ListenForWebhook(path), nil
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

func clampDelay(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, handle func(tgbotapi.Update)) {
	offset := 0
	const (
		baseDelay = 1 * time.Second
		maxDelay  = 15 * time.Second
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("polling: context cancelled")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling, seconds

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := clampDelay(retryDelayFromError(err), baseDelay, maxDelay)
			logger.WithError(err).WithField("retry_in", d.String()).Warn("polling error")
			sleep(ctx, d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ---------------- Helpers -----------------

func resolveDSN(configured string, getenv func(string) string) string {
	if v := strings.TrimSpace(configured); v != "" {
		return v
	}
	def := func(key, d string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return d
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(def("POSTGRES_USER", "animate"), getenv("POSTGRES_PASSWORD")),
		Host:     net.JoinHostPort(def("PGHOST", "db"), def("PGPORT", "5432")),
		Path:     "/" + def("POSTGRES_DB", "animate"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// shortHash gives the webhook a stable path derived from the token.
func shortHash(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}

func safeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
