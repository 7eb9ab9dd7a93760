package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pefman/terraform-tracker/internal/roomstore"
	"github.com/pefman/terraform-tracker/internal/stats"
)

func newTestServer(t *testing.T) (*httptest.Server, *roomstore.MemoryBackend) {
	t.Helper()
	backend := &roomstore.MemoryBackend{}
	logger := log.New(io.Discard, "", 0)
	srv, err := newServer(roomstore.Open(backend, logger), logger, "*")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	t.Cleanup(stats.Reset)
	return ts, backend
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: body %q: %v", method, url, raw, err)
		}
	}
	return resp, out
}

func players(t *testing.T, body map[string]any) []any {
	t.Helper()
	ps, ok := body["players"].([]any)
	if !ok {
		t.Fatalf("players is not an array: %v", body)
	}
	return ps
}

func TestPostThenGet(t *testing.T) {
	ts, backend := newTestServer(t)

	payload := `{"roomId":"r1","players":[{"id":"a","name":"Alice","tr":20,"resources":[]}]}`
	resp, body := do(t, http.MethodPost, ts.URL+"/?roomId=r1", payload)
	if resp.StatusCode != http.StatusOK || body["ok"] != true {
		t.Fatalf("post: %d %v", resp.StatusCode, body)
	}
	if backend.Saves() != 1 {
		t.Fatalf("want 1 save, got %d", backend.Saves())
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/?roomId=r1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: %d", resp.StatusCode)
	}
	ps := players(t, body)
	if len(ps) != 1 || ps[0].(map[string]any)["name"] != "Alice" {
		t.Fatalf("get players: %v", ps)
	}
}

func TestUnknownRoomIsEmpty(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := do(t, http.MethodGet, ts.URL+"/?roomId=nobody", "")
	if resp.StatusCode != http.StatusOK || len(players(t, body)) != 0 {
		t.Fatalf("unknown room: %d %v", resp.StatusCode, body)
	}
}

func TestDefaultRoom(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, http.MethodPost, ts.URL+"/", `{"players":[{"id":"a"}]}`)
	_, body := do(t, http.MethodGet, ts.URL+"/?roomId=default", "")
	if len(players(t, body)) != 1 {
		t.Fatalf("write without roomId should go to the default room: %v", body)
	}
}

func TestPostRejectsNonArrayPlayers(t *testing.T) {
	ts, backend := newTestServer(t)
	do(t, http.MethodPost, ts.URL+"/?roomId=r1", `{"players":[{"id":"a"}]}`)

	for _, payload := range []string{`{"players":"not-an-array"}`, `{"roomId":"r1"}`, ``, `[1,2]`} {
		resp, body := do(t, http.MethodPost, ts.URL+"/?roomId=r1", payload)
		if resp.StatusCode != http.StatusBadRequest || body["error"] != "Invalid payload: players must be array" {
			t.Errorf("payload %q: %d %v", payload, resp.StatusCode, body)
		}
	}

	_, body := do(t, http.MethodGet, ts.URL+"/?roomId=r1", "")
	if len(players(t, body)) != 1 {
		t.Fatalf("rejected write changed state: %v", body)
	}
	if backend.Saves() != 1 {
		t.Fatalf("rejected write was persisted")
	}
}

func TestPostRejectsInvalidJSON(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := do(t, http.MethodPost, ts.URL+"/?roomId=r1", `{"players": [`)
	if resp.StatusCode != http.StatusBadRequest || body["error"] != "Invalid JSON" {
		t.Fatalf("invalid json: %d %v", resp.StatusCode, body)
	}
}

func TestOptionsPreflight(t *testing.T) {
	ts, _ := newTestServer(t)
	for _, path := range []string{"/", "/anything"} {
		resp, _ := do(t, http.MethodOptions, ts.URL+path, "")
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("OPTIONS %s: want 204, got %d", path, resp.StatusCode)
		}
		if got := resp.Header.Get("Access-Control-Allow-Methods"); got != "GET,POST,OPTIONS" {
			t.Errorf("allow methods: %q", got)
		}
	}
}

func TestCORSHeadersOnEveryResponse(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, _ := do(t, http.MethodGet, ts.URL+"/nope", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" || resp.Header.Get("Access-Control-Allow-Headers") != "Content-Type" {
		t.Fatalf("missing CORS headers: %v", resp.Header)
	}
}

func TestUnknownPathAndMethod(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := do(t, http.MethodGet, ts.URL+"/rooms", "")
	if resp.StatusCode != http.StatusNotFound || body["error"] != "Not Found" {
		t.Fatalf("unknown path: %d %v", resp.StatusCode, body)
	}
	resp, body = do(t, http.MethodDelete, ts.URL+"/?roomId=r1", "")
	if resp.StatusCode != http.StatusMethodNotAllowed || body["error"] != "Method Not Allowed" {
		t.Fatalf("DELETE: %d %v", resp.StatusCode, body)
	}
}

func TestHealthAndStats(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, http.MethodPost, ts.URL+"/?roomId=r1", `{"players":[{"id":"a"},{"id":"b"}]}`)
	do(t, http.MethodPost, ts.URL+"/?roomId=r1", `{"players":[{"id":"a"}]}`)

	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK || body["ok"] != true {
		t.Fatalf("healthz: %d %v", resp.StatusCode, body)
	}

	_, body = do(t, http.MethodGet, ts.URL+"/stats?roomId=r1", "")
	if body["total_writes"] != float64(2) || body["players"] != float64(1) {
		t.Fatalf("stats: %v", body)
	}
}

func TestWebSocketPushesRoom(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, http.MethodPost, ts.URL+"/?roomId=r1", `{"players":[{"id":"a"}]}`)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?roomId=r1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg struct {
		Players []map[string]any `json:"players"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("initial message: %v", err)
	}
	if len(msg.Players) != 1 {
		t.Fatalf("initial players: %v", msg.Players)
	}

	do(t, http.MethodPost, ts.URL+"/?roomId=r1", `{"players":[{"id":"a"},{"id":"b"}]}`)
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(msg.Players) != 2 {
		t.Fatalf("updated players: %v", msg.Players)
	}
}
