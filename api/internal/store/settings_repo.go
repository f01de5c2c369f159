package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"animate-prompt/api/internal/prompt"
)

var ErrNotFound = sql.ErrNoRows

// Settings are the per-chat choices of a front-end user.
type Settings struct {
	ChatID    int64
	Detail    prompt.DetailLevel
	Style     prompt.StyleFlags
	APIKey    string
	Engine    string
	Model     string
	UpdatedAt time.Time
}

// DefaultSettings is what a chat gets before it changes anything.
func DefaultSettings(chatID int64) Settings {
	return Settings{ChatID: chatID, Detail: prompt.DefaultDetail}
}

const schema = `
create table if not exists chat_settings (
    chat_id     bigint primary key,
    detail      smallint not null default 3,
    style_json  jsonb not null default '{}'::jsonb,
    api_key     text not null default '',
    engine      text not null default '',
    model       text not null default '',
    updated_at  timestamptz not null default now()
)`

type SettingsRepo struct{ DB *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{DB: db} }

// EnsureSchema creates the table when it does not exist yet.
func (r *SettingsRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

// Get returns the stored settings, or defaults when the chat has none.
func (r *SettingsRepo) Get(ctx context.Context, chatID int64) (Settings, error) {
	const q = `select detail, style_json, api_key, engine, model, updated_at
	           from chat_settings where chat_id=$1`
	var (
		s      = Settings{ChatID: chatID}
		detail int
		js     []byte
	)
	err := r.DB.QueryRowContext(ctx, q, chatID).Scan(&detail, &js, &s.APIKey, &s.Engine, &s.Model, &s.UpdatedAt)
	if errors.Is(err, ErrNotFound) {
		return DefaultSettings(chatID), nil
	}
	if err != nil {
		return Settings{}, err
	}
	s.Detail = prompt.DetailLevel(detail).Normalize()
	if len(js) > 0 {
		// a broken style blob resets toggles instead of blocking the chat
		_ = json.Unmarshal(js, &s.Style)
	}
	return s, nil
}

// Upsert stores the full settings row. PK: chat_id.
func (r *SettingsRepo) Upsert(ctx context.Context, s Settings) error {
	js, err := json.Marshal(s.Style)
	if err != nil {
		return err
	}
	const q = `
insert into chat_settings(chat_id, detail, style_json, api_key, engine, model)
values ($1,$2,$3,$4,$5,$6)
on conflict (chat_id)
do update set detail=excluded.detail, style_json=excluded.style_json, api_key=excluded.api_key,
              engine=excluded.engine, model=excluded.model, updated_at=now()`
	_, err = r.DB.ExecContext(ctx, q, s.ChatID, int(s.Detail.Normalize()), js, s.APIKey, s.Engine, s.Model)
	return err
}

// Delete forgets everything about the chat.
func (r *SettingsRepo) Delete(ctx context.Context, chatID int64) error {
	_, err := r.DB.ExecContext(ctx, `delete from chat_settings where chat_id=$1`, chatID)
	return err
}
