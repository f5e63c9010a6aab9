package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "symbio-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func TestPreferenceCRUDAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	for _, p := range []Preference{
		{Key: "ui.filter", Value: "open", UpdatedAt: at},
		{Key: "ui.page", Value: "2", UpdatedAt: at},
		{Key: "ui_x", Value: "literal underscore", UpdatedAt: at},
		{Key: "wallet.currency", Value: "BTC", UpdatedAt: at},
	} {
		if err := repo.PutPreference(ctx, p); err != nil {
			t.Fatalf("put %s: %v", p.Key, err)
		}
	}

	got, err := repo.GetPreference(ctx, "ui.filter")
	if err != nil {
		t.Fatalf("get preference: %v", err)
	}
	if got.Value != "open" || !got.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected preference: %#v", got)
	}

	if err := repo.PutPreference(ctx, Preference{Key: "ui.filter", Value: "completed"}); err != nil {
		t.Fatalf("overwrite preference: %v", err)
	}
	got, err = repo.GetPreference(ctx, "ui.filter")
	if err != nil {
		t.Fatalf("get overwritten preference: %v", err)
	}
	if got.Value != "completed" {
		t.Fatalf("expected overwrite, got %q", got.Value)
	}

	list, err := repo.ListPreferences(ctx, PreferenceListFilter{Prefix: "ui."})
	if err != nil {
		t.Fatalf("list preferences: %v", err)
	}
	if len(list) != 2 || list[0].Key != "ui.filter" || list[1].Key != "ui.page" {
		t.Fatalf("unexpected prefix listing: %#v", list)
	}

	paged, err := repo.ListPreferences(ctx, PreferenceListFilter{Offset: 1})
	if err != nil {
		t.Fatalf("list with offset: %v", err)
	}
	if len(paged) != 3 {
		t.Fatalf("expected 3 preferences after offset, got %d", len(paged))
	}

	if err := repo.DeletePreference(ctx, "ui.page"); err != nil {
		t.Fatalf("delete preference: %v", err)
	}
	if _, err := repo.GetPreference(ctx, "ui.page"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeletePreference(ctx, "ui.page"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestReadMarksOnlyMoveForward(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.GetReadMark(ctx, ThreadChat, 4); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.PutReadMark(ctx, ReadMark{Kind: ThreadChat, ThreadID: 4, LastMessageID: 10}); err != nil {
		t.Fatalf("put mark: %v", err)
	}
	if err := repo.PutReadMark(ctx, ReadMark{Kind: ThreadChat, ThreadID: 4, LastMessageID: 7}); err != nil {
		t.Fatalf("put older mark: %v", err)
	}
	got, err := repo.GetReadMark(ctx, ThreadChat, 4)
	if err != nil {
		t.Fatalf("get mark: %v", err)
	}
	if got.LastMessageID != 10 {
		t.Fatalf("expected mark to stay at 10, got %d", got.LastMessageID)
	}

	if err := repo.PutReadMark(ctx, ReadMark{Kind: ThreadTicket, ThreadID: 4, LastMessageID: 2}); err != nil {
		t.Fatalf("put ticket mark: %v", err)
	}
	if err := repo.PutReadMark(ctx, ReadMark{Kind: "forum", ThreadID: 1, LastMessageID: 1}); err == nil {
		t.Fatal("expected check constraint failure for unknown kind")
	}
	marks, err := repo.ListReadMarks(ctx, ThreadTicket)
	if err != nil {
		t.Fatalf("list marks: %v", err)
	}
	if len(marks) != 1 || marks[0].LastMessageID != 2 {
		t.Fatalf("unexpected ticket marks: %#v", marks)
	}
	all, err := repo.ListReadMarks(ctx, "")
	if err != nil {
		t.Fatalf("list all marks: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 marks, got %d", len(all))
	}
}

func TestTokenStoreRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	store := NewTokenStore(repo)
	ctx := context.Background()

	token, err := store.Load(ctx)
	if err != nil || token != "" {
		t.Fatalf("expected empty token, got %q err=%v", token, err)
	}
	if err := store.Save(ctx, "tok-1"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if token, err = store.Load(ctx); err != nil || token != "tok-1" {
		t.Fatalf("expected tok-1, got %q err=%v", token, err)
	}
	if err := store.Save(ctx, ""); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if err := store.Save(ctx, ""); err != nil {
		t.Fatalf("clear token twice: %v", err)
	}
	if token, err = store.Load(ctx); err != nil || token != "" {
		t.Fatalf("expected cleared token, got %q err=%v", token, err)
	}
}

func TestOpenSQLiteMigrates(t *testing.T) {
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()
	if err := repo.PutPreference(context.Background(), Preference{Key: "k", Value: "v"}); err != nil {
		t.Fatalf("put after open: %v", err)
	}
}
