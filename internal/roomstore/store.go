// Package roomstore holds every room's player list for the room server.
//
// Player lists are kept as raw JSON: the server validates the shape of a
// write but never interprets the players themselves, so clients of any
// version can share a room.
package roomstore

import (
	"encoding/json"
	"log"
	"maps"
	"sync"
)

// Backend persists the whole room map. Load on a store that has never been
// saved returns an empty map.
type Backend interface {
	Load() (map[string]json.RawMessage, error)
	Save(rooms map[string]json.RawMessage) error
}

var emptyPlayers = json.RawMessage("[]")

type Store struct {
	backend Backend
	log     *log.Logger

	mu    sync.RWMutex
	rooms map[string]json.RawMessage

	subMu sync.Mutex
	subs  map[string]map[chan json.RawMessage]struct{}
}

// Open loads the backend's rooms. An unreadable backend is logged and the
// store starts empty; the next write replaces whatever was there.
func Open(b Backend, logger *log.Logger) *Store {
	rooms, err := b.Load()
	if err != nil {
		logger.Printf("load rooms: %v (starting empty)", err)
		rooms = nil
	}
	if rooms == nil {
		rooms = map[string]json.RawMessage{}
	}
	return &Store{
		backend: b,
		log:     logger,
		rooms:   rooms,
		subs:    map[string]map[chan json.RawMessage]struct{}{},
	}
}

// Get returns the room's player array; an unknown room yields "[]".
func (s *Store) Get(roomID string) json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.rooms[roomID]; ok {
		return clone(p)
	}
	return clone(emptyPlayers)
}

// Put replaces the room's player array, persists the whole map and notifies
// the room's subscribers. A failed save is logged; the in-memory state keeps
// the write. Subscribers see writes in the order they were stored.
func (s *Store) Put(roomID string, players json.RawMessage) {
	players = clone(players)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[roomID] = players
	if err := s.backend.Save(maps.Clone(s.rooms)); err != nil {
		s.log.Printf("persist rooms: %v", err)
	}
	s.publish(roomID, players)
}

// Rooms returns the number of rooms held.
func (s *Store) Rooms() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Subscribe returns a channel that receives the room's player array after
// every Put. Slow readers only see the latest value. cancel must be called
// once the channel is no longer read.
func (s *Store) Subscribe(roomID string) (<-chan json.RawMessage, func()) {
	ch := make(chan json.RawMessage, 1)
	s.subMu.Lock()
	if s.subs[roomID] == nil {
		s.subs[roomID] = map[chan json.RawMessage]struct{}{}
	}
	s.subs[roomID][ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs[roomID], ch)
			if len(s.subs[roomID]) == 0 {
				delete(s.subs, roomID)
			}
			s.subMu.Unlock()
		})
	}
}

func (s *Store) publish(roomID string, players json.RawMessage) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs[roomID] {
		select {
		case <-ch: // drop the stale value
		default:
		}
		ch <- players
	}
}

func clone(b json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), b...)
}
