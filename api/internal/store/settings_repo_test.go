package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"

	"animate-prompt/api/internal/prompt"
)

// Runs against a real Postgres only when TEST_DATABASE_URL is set.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSettingsRepoRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewSettingsRepo(db)
	ctx := context.Background()
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	const chat = -987654321
	t.Cleanup(func() { _ = repo.Delete(ctx, chat) })

	s, err := repo.Get(ctx, chat)
	if err != nil {
		t.Fatalf("Get (missing): %v", err)
	}
	if s != DefaultSettings(chat) {
		t.Errorf("missing row = %+v", s)
	}

	want := Settings{
		ChatID: chat,
		Detail: prompt.DetailConcise,
		Style:  prompt.StyleFlags{Realistic3D: true, GreenScreen: true},
		APIKey: "k",
		Engine: "gpt",
		Model:  "gpt-4o",
	}
	if err := repo.Upsert(ctx, want); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := repo.Get(ctx, chat)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.UpdatedAt = want.UpdatedAt
	if got != want {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
}
