package stats

import (
	"sync"
	"time"
)

// Per-room write counters for the room server (in-memory, reset on restart).
var (
	statsMu sync.Mutex
	rooms   = make(map[string]*roomCounters)
	// now is swapped in tests.
	now = time.Now
)

type roomCounters struct {
	total     int
	daily     map[string]int // by date string YYYY-MM-DD UTC
	lastWrite time.Time
	players   int
}

// RoomStats is the JSON shape served by GET /stats.
type RoomStats struct {
	RoomID      string     `json:"roomId"`
	WritesToday int        `json:"writes_today"`
	TotalWrites int        `json:"total_writes"`
	LastWrite   *time.Time `json:"last_write,omitempty"`
	Players     int        `json:"players"`
}

// RecordWrite counts an accepted write of a player list to the room.
func RecordWrite(roomID string, players int) {
	t := now().UTC()
	statsMu.Lock()
	defer statsMu.Unlock()
	c := rooms[roomID]
	if c == nil {
		c = &roomCounters{daily: map[string]int{}}
		rooms[roomID] = c
	}
	c.total++
	c.daily[dayKey(t)]++
	c.lastWrite = t
	c.players = players
	pruneDays(c, t)
}

// Room returns the counters for a room; an unknown room has all zeros.
func Room(roomID string) RoomStats {
	today := dayKey(now().UTC())
	statsMu.Lock()
	defer statsMu.Unlock()
	out := RoomStats{RoomID: roomID}
	c, ok := rooms[roomID]
	if !ok {
		return out
	}
	last := c.lastWrite
	out.WritesToday = c.daily[today]
	out.TotalWrites = c.total
	out.LastWrite = &last
	out.Players = c.players
	return out
}
