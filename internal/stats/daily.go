package stats

import "time"

// This file contains helpers around daily counters. It complements stats.go.

// keepDays is how many daily buckets a room keeps.
const keepDays = 7

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

func pruneDays(c *roomCounters, t time.Time) {
	if len(c.daily) <= keepDays {
		return
	}
	oldest := dayKey(t.AddDate(0, 0, -keepDays+1))
	for k := range c.daily {
		// YYYY-MM-DD sorts lexically.
		if k < oldest {
			delete(c.daily, k)
		}
	}
}

// ResetDaily clears every room's daily counters, keeping totals.
// Intended for tests and dev convenience.
func ResetDaily() {
	statsMu.Lock()
	defer statsMu.Unlock()
	for _, c := range rooms {
		clear(c.daily)
	}
}

// Reset forgets all rooms.
func Reset() {
	statsMu.Lock()
	defer statsMu.Unlock()
	clear(rooms)
}
