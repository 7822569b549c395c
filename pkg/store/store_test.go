package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewDocument(t *testing.T) {
	doc, err := NewDocument("greeting", `{"text":"hello"}`, false, time.Hour)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if doc.ID == "" {
		t.Error("ID should be generated")
	}
	if doc.Name != "greeting" {
		t.Errorf("Name = %q", doc.Name)
	}
	if doc.CreatedAt.IsZero() || doc.ExpiresAt.IsZero() {
		t.Error("timestamps should be set")
	}
	if !doc.ExpiresAt.After(doc.CreatedAt) {
		t.Error("ExpiresAt should be after CreatedAt")
	}
	if doc.IsExpired() {
		t.Error("fresh document should not be expired")
	}

	// IDs are unique
	other, err := NewDocument("greeting", `{"text":"hello"}`, false, time.Hour)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if other.ID == doc.ID {
		t.Error("documents should get distinct IDs")
	}
}

func TestNewDocumentDefaultTTL(t *testing.T) {
	doc, err := NewDocument("", `"hi"`, false, 0)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	want := doc.CreatedAt.Add(DefaultTTL)
	if !doc.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", doc.ExpiresAt, want)
	}
}

func TestNewDocumentRejectsBadInput(t *testing.T) {
	if _, err := NewDocument("bad", `{"text":`, false, time.Hour); err == nil {
		t.Error("malformed JSON should be rejected")
	}
	if _, err := NewDocument("bad", `42`, false, time.Hour); err == nil {
		t.Error("non-component JSON should be rejected")
	}
}

func TestDocumentComponent(t *testing.T) {
	doc, err := NewDocument("json", `{"text":"hi","bold":true}`, false, time.Hour)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	c, err := doc.Component()
	if err != nil {
		t.Fatalf("Component: %v", err)
	}
	if c.Text != "hi" {
		t.Errorf("Text = %q", c.Text)
	}
	if c.Bold == nil || !*c.Bold {
		t.Error("Bold should be set")
	}
}

func TestDocumentComponentLegacy(t *testing.T) {
	doc, err := NewDocument("legacy", "§6gold §r§lplain bold", true, time.Hour)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	c, err := doc.Component()
	if err != nil {
		t.Fatalf("Component: %v", err)
	}
	if got := c.PlainText(); got != "gold plain bold" {
		t.Errorf("PlainText = %q", got)
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	defer st.Close(ctx)

	// Missing document
	if _, err := st.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}

	doc, err := NewDocument("greeting", `{"text":"hello"}`, false, time.Hour)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if err := st.Put(ctx, doc); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := st.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "greeting" || got.Raw != doc.Raw {
		t.Errorf("Get returned %+v", got)
	}

	// Returned document is a copy
	got.Name = "mutated"
	again, _ := st.Get(ctx, doc.ID)
	if again.Name != "greeting" {
		t.Error("stored document mutated through Get result")
	}

	// Put replaces
	doc.Name = "renamed"
	if err := st.Put(ctx, doc); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	got, _ = st.Get(ctx, doc.ID)
	if got.Name != "renamed" {
		t.Errorf("Name after replace = %q", got.Name)
	}

	// Delete, twice
	if err := st.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := st.Delete(ctx, doc.ID); err != nil {
		t.Errorf("Delete of missing document should not error: %v", err)
	}
	if _, err := st.Get(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	defer st.Close(ctx)

	doc, err := NewDocument("short", `"x"`, false, time.Millisecond)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if err := st.Put(ctx, doc); err != nil {
		t.Fatalf("Put: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := st.Get(ctx, doc.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("Get expired = %v, want ErrExpired", err)
	}
	// The expired document was dropped; a second Get reports not found.
	if _, err := st.Get(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after expiry drop = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	defer st.Close(ctx)

	older, _ := NewDocument("older", `"a"`, false, time.Hour)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer, _ := NewDocument("newer", `"b"`, false, time.Hour)
	expired, _ := NewDocument("expired", `"c"`, false, time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Minute)

	for _, doc := range []*Document{older, newer, expired} {
		if err := st.Put(ctx, doc); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	docs, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("List returned %d documents, want 2", len(docs))
	}
	if docs[0].Name != "newer" || docs[1].Name != "older" {
		t.Errorf("List order: %s, %s", docs[0].Name, docs[1].Name)
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	defer st.Close(ctx)

	live, _ := NewDocument("live", `"a"`, false, time.Hour)
	dead, _ := NewDocument("dead", `"b"`, false, time.Hour)
	dead.ExpiresAt = time.Now().Add(-time.Minute)

	st.Put(ctx, live)
	st.Put(ctx, dead)

	if err := st.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	if _, err := st.Get(ctx, live.ID); err != nil {
		t.Errorf("live document should survive Cleanup: %v", err)
	}
	if _, err := st.Get(ctx, dead.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("dead document should be gone: %v", err)
	}
}
