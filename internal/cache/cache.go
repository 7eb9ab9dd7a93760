// Package cache is the client's local durable store. It keeps the last known
// roster of every room so the player view survives an unreachable server.
//
// Layout, one value per key:
//
//	gameState_<roomId>        {"players": [...], "currentPlayerId": "..."}
//	currentPlayerId_<roomId>  selected player id
//	roomId                    last room opened from the home view
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pefman/terraform-tracker/internal/models"
)

// ErrCorrupt is returned when a cached room cannot be decoded.
var ErrCorrupt = errors.New("cached room state is corrupt")

// KV is the raw key/value backend.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// State is what gets cached per room.
type State struct {
	Players         models.Roster `json:"players"`
	CurrentPlayerID string        `json:"currentPlayerId,omitempty"`
}

const lastRoomKey = "roomId"

func stateKey(roomID string) string    { return "gameState_" + roomID }
func selectedKey(roomID string) string { return "currentPlayerId_" + roomID }

// Store implements the room cache on top of a KV backend.
type Store struct {
	kv KV
}

func New(kv KV) *Store { return &Store{kv: kv} }

// NewMemory returns a Store that keeps everything in process memory.
func NewMemory() *Store { return New(NewMemoryKV()) }

func (s *Store) Close() error { return s.kv.Close() }

// Load returns the cached state of a room. ok is false when nothing was ever
// cached for it.
func (s *Store) Load(ctx context.Context, roomID string) (State, bool, error) {
	raw, ok, err := s.kv.Get(ctx, stateKey(roomID))
	if err != nil || !ok {
		return State{}, false, err
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}, false, fmt.Errorf("%w: room %s: %v", ErrCorrupt, roomID, err)
	}
	if st.Players == nil {
		st.Players = models.Roster{}
	}
	return st, true, nil
}

// Save writes the room state and its selected-player entry.
func (s *Store) Save(ctx context.Context, roomID string, st State) error {
	if st.Players == nil {
		st.Players = models.Roster{}
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, stateKey(roomID), string(b)); err != nil {
		return err
	}
	if st.CurrentPlayerID == "" {
		return s.kv.Delete(ctx, selectedKey(roomID))
	}
	return s.kv.Put(ctx, selectedKey(roomID), st.CurrentPlayerID)
}

// SelectedPlayer returns the remembered player id for a room, "" if none.
func (s *Store) SelectedPlayer(ctx context.Context, roomID string) (string, error) {
	v, _, err := s.kv.Get(ctx, selectedKey(roomID))
	return v, err
}

// SetSelectedPlayer remembers (or forgets, for "") the selected player.
func (s *Store) SetSelectedPlayer(ctx context.Context, roomID, playerID string) error {
	if playerID == "" {
		return s.kv.Delete(ctx, selectedKey(roomID))
	}
	return s.kv.Put(ctx, selectedKey(roomID), playerID)
}

func (s *Store) LastRoom(ctx context.Context) (string, error) {
	v, _, err := s.kv.Get(ctx, lastRoomKey)
	return v, err
}

func (s *Store) SetLastRoom(ctx context.Context, roomID string) error {
	return s.kv.Put(ctx, lastRoomKey, roomID)
}
