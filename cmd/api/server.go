package main

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pefman/terraform-tracker/internal/models"
	"github.com/pefman/terraform-tracker/internal/roomstore"
	"github.com/pefman/terraform-tracker/internal/stats"
)

//go:embed room.schema.json
var roomSchemaJSON string

// maxBody bounds a POST body; a full room is a few kilobytes.
const maxBody = 1 << 20

type server struct {
	store    *roomstore.Store
	schema   *jsonschema.Schema
	log      *log.Logger
	origin   string
	upgrader websocket.Upgrader
}

func newServer(store *roomstore.Store, logger *log.Logger, origin string) (*server, error) {
	schema, err := jsonschema.CompileString("room.schema.json", roomSchemaJSON)
	if err != nil {
		return nil, err
	}
	if origin == "" {
		origin = "*"
	}
	s := &server{store: store, schema: schema, log: logger, origin: origin}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s, nil
}

func (s *server) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleGetRoom).Methods(http.MethodGet)
	r.HandleFunc("/", s.handlePostRoom).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rooms": s.store.Rooms()})
	}).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return s.logRequests(s.withCORS(r))
}

// roomID reads ?roomId=, defaulting to the shared room.
func roomID(r *http.Request) string {
	if id := r.URL.Query().Get("roomId"); id != "" {
		return id
	}
	return models.DefaultRoomID
}

// GET /?roomId=...
func (s *server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"players": s.store.Get(roomID(r))})
}

// POST /?roomId=...  body: {"roomId": "...", "players": [...]}
func (s *server) handlePostRoom(w http.ResponseWriter, r *http.Request) {
	room := roomID(r)
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		s.log.Printf("parse body room=%s: %v", room, err)
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := s.schema.Validate(doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload: players must be array")
		return
	}
	var payload struct {
		Players json.RawMessage `json:"players"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	s.store.Put(room, payload.Players)
	stats.RecordWrite(room, len(doc.(map[string]any)["players"].([]any)))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ----------------- helpers -----------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// withCORS sets the CORS headers on every response and answers preflight
// requests for any path.
func (s *server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Printf("%s %s roomId=%s", r.Method, r.URL.Path, roomID(r))
		next.ServeHTTP(w, r)
	})
}

func (s *server) checkOrigin(r *http.Request) bool {
	if s.origin == "*" {
		return true
	}
	o := r.Header.Get("Origin")
	return o == "" || o == s.origin
}
