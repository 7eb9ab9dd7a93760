package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pefman/terraform-tracker/internal/models"
)

func TestClientFetchAndSave(t *testing.T) {
	var posted models.Room
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("roomId"); got != "room 1" {
			t.Errorf("roomId: want %q, got %q", "room 1", got)
		}
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"players":[{"id":"p1","name":"A","tr":21,"resources":[]}]}`)
		case http.MethodPost:
			if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
				t.Errorf("decode post: %v", err)
			}
			_, _ = io.WriteString(w, `{"ok":true}`)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	roster, err := c.Fetch(ctx, "room 1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(roster) != 1 || roster[0].TR != 21 {
		t.Fatalf("unexpected roster: %+v", roster)
	}

	if err := c.Save(ctx, "room 1", roster); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if posted.RoomID != "room 1" || len(posted.Players) != 1 {
		t.Errorf("unexpected post body: %+v", posted)
	}
}

func TestClientFetchEmptyAndErrors(t *testing.T) {
	mode := "empty"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch mode {
		case "empty":
			_, _ = io.WriteString(w, `{}`)
		case "garbage":
			_, _ = io.WriteString(w, `{"players": "nope"`)
		case "status":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"Invalid JSON"}`)
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL)
	ctx := context.Background()

	roster, err := c.Fetch(ctx, "")
	if err != nil || roster == nil || len(roster) != 0 {
		t.Fatalf("empty body: want empty roster, got %v, %v", roster, err)
	}

	mode = "garbage"
	if _, err := c.Fetch(ctx, "r"); !errors.Is(err, ErrMalformed) {
		t.Errorf("want ErrMalformed, got %v", err)
	}

	mode = "status"
	err = c.Save(ctx, "r", nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest || se.Body != "Invalid JSON" {
		t.Errorf("want StatusError 400, got %v", err)
	}
}

func TestBeaconGivesUp(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClientWithConfig(Config{BaseURL: srv.URL, BeaconTimeout: 50 * time.Millisecond})
	start := time.Now()
	if err := c.Beacon(context.Background(), "r", models.Roster{}); err == nil {
		t.Fatalf("want timeout error from a stalled server")
	}
	if d := time.Since(start); d > 2*time.Second {
		t.Errorf("beacon blocked for %v", d)
	}
}

func TestStreamURL(t *testing.T) {
	c := NewClient("https://example.com/base/")
	got, err := c.StreamURL("a b")
	if err != nil {
		t.Fatalf("StreamURL: %v", err)
	}
	if want := "wss://example.com/base/ws?roomId=a+b"; got != want {
		t.Errorf("want %s, got %s", want, got)
	}
}
