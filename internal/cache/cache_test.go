package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pefman/terraform-tracker/internal/models"
)

func exerciseStore(t *testing.T, s *Store, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Load(ctx, "r1"); ok || err != nil {
		t.Fatalf("empty cache: want ok=false, err=nil, got %v, %v", ok, err)
	}

	st := State{
		Players:         models.Roster{{ID: "p1", Name: "A", TR: 20, Resources: []models.Resource{{ID: "mc", Name: "MC", Amount: 4, Category: models.CategoryCurrency}}}},
		CurrentPlayerID: "p1",
	}
	if err := s.Save(ctx, "r1", st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := s.Load(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("Load: %v, ok=%v", err, ok)
	}
	if !got.Players.Equal(st.Players) || got.CurrentPlayerID != "p1" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if id, _ := s.SelectedPlayer(ctx, "r1"); id != "p1" {
		t.Errorf("selected player: want p1, got %q", id)
	}

	st.CurrentPlayerID = ""
	if err := s.Save(ctx, "r1", st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id, _ := s.SelectedPlayer(ctx, "r1"); id != "" {
		t.Errorf("selected player should be cleared, got %q", id)
	}

	if err := kv.Put(ctx, stateKey("broken"), "{not json"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, _, err := s.Load(ctx, "broken"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("want ErrCorrupt, got %v", err)
	}

	if err := s.SetLastRoom(ctx, "r1"); err != nil {
		t.Fatalf("SetLastRoom: %v", err)
	}
	if r, _ := s.LastRoom(ctx); r != "r1" {
		t.Errorf("last room: want r1, got %q", r)
	}
}

func TestMemoryStore(t *testing.T) {
	kv := NewMemoryKV()
	exerciseStore(t, New(kv), kv)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	kv, err := OpenSQLiteKV(path)
	if err != nil {
		t.Fatalf("OpenSQLiteKV: %v", err)
	}
	s := New(kv)
	exerciseStore(t, s, kv)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, ok, err := reopened.Load(context.Background(), "r1"); !ok || err != nil {
		t.Errorf("state did not survive reopen: ok=%v err=%v", ok, err)
	}
}
