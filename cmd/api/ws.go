package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

type roomMsg struct {
	Players json.RawMessage `json:"players"`
}

// ----------------- WebSocket room stream -----------------

// GET /ws?roomId=...  pushes {"players": [...]} on connect and after every
// accepted write to the room. Messages from the client are ignored.
func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	room := roomID(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("ws: upgrade room=%s: %v", room, err)
		return
	}
	defer conn.Close()
	s.log.Printf("ws: connect room=%s from=%s", room, r.RemoteAddr)

	updates, cancel := s.store.Subscribe(room)
	defer cancel()

	if err := writeRoom(conn, s.store.Get(room)); err != nil {
		return
	}

	eg, ctx := errgroup.WithContext(r.Context())
	eg.Go(func() error {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return err
			}
		}
	})
	eg.Go(func() error {
		return pushLoop(ctx, conn, updates)
	})
	err = eg.Wait()
	s.log.Printf("ws: closed room=%s: %v", room, err)
}

func pushLoop(ctx context.Context, conn *websocket.Conn, updates <-chan json.RawMessage) error {
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			// Unblocks the read loop.
			_ = conn.Close()
			return ctx.Err()
		case players := <-updates:
			if err := writeRoom(conn, players); err != nil {
				_ = conn.Close()
				return err
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				_ = conn.Close()
				return err
			}
		}
	}
}

func writeRoom(conn *websocket.Conn, players json.RawMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(roomMsg{Players: players})
}
