package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/shirabe/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_CRUD(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	published := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	item := &models.ContentItem{
		ID:              "job1",
		Type:            "job",
		Title:           "Remote Software Engineer",
		Body:            "We offer remote jobs across the globe.",
		ExcerptOverride: "Join us",
		PublishedAt:     published,
		ModifiedAt:      published.Add(time.Hour),
		Categories:      []string{"Careers", "Remote Work"},
		AuthorID:        "u1",
		CommentCount:    2,
		ViewCount:       40,
	}
	if err := store.PutItem(ctx, item); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetItem(ctx, "job1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != item.Title || got.Type != "job" || got.ExcerptOverride != "Join us" {
		t.Errorf("got %+v", got)
	}
	if !got.PublishedAt.Equal(published) || !got.ModifiedAt.Equal(item.ModifiedAt) {
		t.Errorf("times = %v / %v", got.PublishedAt, got.ModifiedAt)
	}
	if len(got.Categories) != 2 || got.Categories[1] != "Remote Work" {
		t.Errorf("categories = %v", got.Categories)
	}
	if got.CommentCount != 2 || got.ViewCount != 40 || got.AuthorID != "u1" {
		t.Errorf("counters = %+v", got)
	}

	item.Title = "Updated"
	item.Categories = nil
	if err := store.PutItem(ctx, item); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetItem(ctx, "job1")
	if got.Title != "Updated" {
		t.Errorf("expected Updated, got %s", got.Title)
	}
	if len(got.Categories) != 0 {
		t.Errorf("categories = %v, want none", got.Categories)
	}

	list, err := store.ListItems(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 item, got %d", len(list))
	}

	if err := store.DeleteItem(ctx, "job1"); err != nil {
		t.Fatal(err)
	}
	_, err = store.GetItem(ctx, "job1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStorage_GetItems(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b", "c"} {
		if err := store.PutItem(ctx, &models.ContentItem{ID: id, Type: "article", Title: id, PublishedAt: now, ModifiedAt: now}); err != nil {
			t.Fatal(err)
		}
	}

	items, err := store.GetItems(ctx, []string{"c", "missing", "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].ID != "c" || items[1].ID != "a" {
		t.Errorf("GetItems order: got %d items", len(items))
		for _, it := range items {
			t.Logf("  %s", it.ID)
		}
	}

	items, err = store.GetItems(ctx, nil)
	if err != nil || items == nil || len(items) != 0 {
		t.Errorf("GetItems(nil) = %v, %v", items, err)
	}
}

func TestSQLiteStorage_ListOrder(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	offsets := map[string]time.Duration{"old": 0, "new": 48 * time.Hour, "mid": 24 * time.Hour}
	for id, offset := range offsets {
		ts := base.Add(offset)
		if err := store.PutItem(ctx, &models.ContentItem{ID: id, Type: "article", PublishedAt: ts, ModifiedAt: ts}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := store.ListItems(ctx, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "new" || list[1].ID != "mid" {
		t.Errorf("ListItems = %v", list)
	}
}

func TestSQLiteStorage_Counts(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	n, err := store.CountItems(ctx)
	if err != nil || n != 0 {
		t.Errorf("CountItems: %v, %d", err, n)
	}
	now := time.Now()
	_ = store.PutItem(ctx, &models.ContentItem{ID: "a1", Type: "article", PublishedAt: now, ModifiedAt: now})
	_ = store.PutItem(ctx, &models.ContentItem{ID: "j1", Type: "job", PublishedAt: now, ModifiedAt: now})
	_ = store.PutItem(ctx, &models.ContentItem{ID: "j2", Type: "job", PublishedAt: now, ModifiedAt: now})
	n, _ = store.CountItems(ctx)
	if n != 3 {
		t.Errorf("expected 3 items, got %d", n)
	}

	byType, err := store.CountItemsByType(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if byType["job"] != 2 || byType["article"] != 1 {
		t.Errorf("CountItemsByType = %v", byType)
	}
}
