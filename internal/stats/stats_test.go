package stats

import (
	"testing"
	"time"
)

func withClock(t *testing.T, at time.Time) *time.Time {
	t.Helper()
	cur := at
	now = func() time.Time { return cur }
	t.Cleanup(func() {
		now = time.Now
		Reset()
	})
	return &cur
}

func TestRecordWriteCounts(t *testing.T) {
	cur := withClock(t, time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC))

	RecordWrite("r1", 2)
	RecordWrite("r1", 3)
	*cur = cur.Add(2 * time.Hour) // next UTC day
	RecordWrite("r1", 4)

	got := Room("r1")
	if got.TotalWrites != 3 || got.WritesToday != 1 || got.Players != 4 {
		t.Fatalf("unexpected stats: %+v", got)
	}
	if got.LastWrite == nil || !got.LastWrite.Equal(*cur) {
		t.Fatalf("last write: %v", got.LastWrite)
	}
}

func TestUnknownRoomIsZero(t *testing.T) {
	withClock(t, time.Now())
	got := Room("nope")
	if got.TotalWrites != 0 || got.LastWrite != nil || got.RoomID != "nope" {
		t.Fatalf("unexpected stats: %+v", got)
	}
}

func TestResetDailyKeepsTotals(t *testing.T) {
	withClock(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	RecordWrite("r1", 1)
	ResetDaily()
	got := Room("r1")
	if got.WritesToday != 0 || got.TotalWrites != 1 {
		t.Fatalf("unexpected stats: %+v", got)
	}
}

func TestOldDaysPruned(t *testing.T) {
	cur := withClock(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	for range 10 {
		RecordWrite("r1", 1)
		*cur = cur.AddDate(0, 0, 1)
	}
	statsMu.Lock()
	n := len(rooms["r1"].daily)
	statsMu.Unlock()
	if n > keepDays {
		t.Fatalf("want at most %d daily buckets, got %d", keepDays, n)
	}
}
