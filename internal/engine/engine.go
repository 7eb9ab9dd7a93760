// Package engine keeps one player's view of a room in sync with the room
// server and a local cache.
//
// Local edits are applied immediately, written to the cache synchronously
// and pushed to the server after a quiet period. A periodic poll pulls other
// players' changes back in through MergeRemoteSnapshot. A read that started
// before the latest local edit is discarded when it completes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"sync"
	"time"

	"github.com/pefman/terraform-tracker/internal/cache"
	"github.com/pefman/terraform-tracker/internal/game"
	"github.com/pefman/terraform-tracker/internal/models"
)

//go:generate go tool mockgen -destination=mocks/mock_engine.go -package=mocks . RemoteStore,Cache

var (
	// ErrStateUnavailable means neither the server nor the cache produced a
	// usable roster. The session cannot continue; the user has to start over.
	ErrStateUnavailable = errors.New("room state unavailable")
	ErrNoPlayer         = errors.New("no player selected")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrClosed           = errors.New("engine closed")
)

// RemoteStore is the room server.
type RemoteStore interface {
	Fetch(ctx context.Context, roomID string) (models.Roster, error)
	Save(ctx context.Context, roomID string, players models.Roster) error
	// Beacon is a best-effort Save that must return quickly.
	Beacon(ctx context.Context, roomID string, players models.Roster) error
}

// Cache is the local durable store.
type Cache interface {
	Load(ctx context.Context, roomID string) (cache.State, bool, error)
	Save(ctx context.Context, roomID string, st cache.State) error
	SelectedPlayer(ctx context.Context, roomID string) (string, error)
}

type Config struct {
	Rules game.Rules

	// Debounce is the quiet period after the last local edit before the
	// roster is written to the server.
	Debounce time.Duration
	// PollInterval is how often the server is read for other players' edits.
	PollInterval time.Duration
	// PollGuard skips a poll when a local edit is more recent than this.
	PollGuard time.Duration
	// NoticeTTL is how long a rejected-action notice stays visible.
	NoticeTTL time.Duration
	// RequestTimeout bounds each background read or write.
	RequestTimeout time.Duration
	// ExitBudget bounds FlushOnExit.
	ExitBudget time.Duration
	// HistoryLimit caps the undo stack; 0 means unbounded.
	HistoryLimit int

	Clock  Clock
	Logger *log.Logger
	// OnChange is called, outside the engine lock, after every state change.
	OnChange func()
}

func (c *Config) setDefaults() {
	if c.Rules.Resources == nil {
		c.Rules = game.DefaultRules()
	}
	if c.Debounce <= 0 {
		c.Debounce = time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 3 * time.Second
	}
	if c.PollGuard <= 0 {
		c.PollGuard = 1500 * time.Millisecond
	}
	if c.NoticeTTL <= 0 {
		c.NoticeTTL = 2 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 8 * time.Second
	}
	if c.ExitBudget <= 0 {
		c.ExitBudget = 1500 * time.Millisecond
	}
	if c.Clock == nil {
		c.Clock = realClock{}
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard, "", 0)
	}
}

// State is a read-only snapshot for rendering.
type State struct {
	RoomID           string
	Players          models.Roster
	SelectedPlayerID string
	Loading          bool
	Notice           string
	Err              error
	CanUndo          bool
	CanRedo          bool
}

// Selected returns the selected player, if any.
func (s State) Selected() (models.Player, bool) {
	return s.Players.Find(s.SelectedPlayerID)
}

type Engine struct {
	remote RemoteStore
	cache  Cache
	cfg    Config
	log    *log.Logger

	mu        sync.Mutex
	roomID    string
	preferred string
	roster    models.Roster
	selected  string
	hist      history
	lastEdit  time.Time // zero until the first local edit
	editSeq   uint64
	loading   bool
	globalErr error

	notice    string
	noticeGen int

	// pendingFlush is set when a server write failed; the next poll retries it.
	pendingFlush bool
	// tombstones are players deleted locally and not yet confirmed by a write.
	tombstones map[string]struct{}
	// unconfirmed are players edited locally and not yet confirmed by a write;
	// their local copy survives merges even when another player is active.
	unconfirmed map[string]struct{}

	debounce Timer
	poller   Timer
	started  bool
	closed   bool
}

func New(remote RemoteStore, c Cache, cfg Config) (*Engine, error) {
	if remote == nil {
		return nil, errors.New("engine: remote store is required")
	}
	if c == nil {
		return nil, errors.New("engine: cache is required")
	}
	cfg.setDefaults()
	return &Engine{
		remote:     remote,
		cache:      c,
		cfg:        cfg,
		log:        cfg.Logger,
		roster:     models.Roster{},
		loading:    true,
		hist:       history{limit: cfg.HistoryLimit},
		tombstones:  map[string]struct{}{},
		unconfirmed: map[string]struct{}{},
	}, nil
}

// Initialize loads the room, preferring a non-empty server roster and falling
// back to the cache, selects the active player and starts the background
// tasks. A failed server read is not an error; an unreadable cache after a
// failed or empty server read is, and is also kept in State().Err.
func (e *Engine) Initialize(ctx context.Context, roomID, preferredPlayerID string) error {
	if roomID == "" {
		roomID = models.DefaultRoomID
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.roomID = roomID
	e.preferred = preferredPlayerID
	e.loading = true
	e.mu.Unlock()

	remembered, err := e.cache.SelectedPlayer(ctx, roomID)
	if err != nil {
		e.log.Printf("read remembered player: %v", err)
	}

	remote, err := e.remote.Fetch(ctx, roomID)
	switch {
	case err != nil:
		e.log.Printf("initial fetch room=%s failed, using cache: %v", roomID, err)
	case len(remote) > 0:
		e.adopt(remote, remembered)
		return nil
	}

	st, ok, err := e.cache.Load(ctx, roomID)
	if err != nil {
		e.mu.Lock()
		e.globalErr = fmt.Errorf("%w: %v", ErrStateUnavailable, err)
		e.loading = false
		gerr := e.globalErr
		e.mu.Unlock()
		e.log.Printf("restore room=%s from cache: %v", roomID, err)
		e.notify()
		return gerr
	}
	if !ok {
		st.Players = models.Roster{}
	}
	e.adopt(st.Players, remembered)
	return nil
}

func (e *Engine) adopt(players models.Roster, remembered string) {
	e.mu.Lock()
	e.roster = players.Clone()
	e.selected = e.chooseLocked(remembered)
	e.loading = false
	if len(e.roster) > 0 {
		e.persistLocked()
	}
	e.startLocked()
	e.mu.Unlock()
	e.notify()
}

// chooseLocked picks the active player: preferred id, then the remembered
// one, then the first player.
func (e *Engine) chooseLocked(remembered string) string {
	switch {
	case e.roster.Contains(e.preferred):
		return e.preferred
	case e.roster.Contains(remembered):
		return remembered
	case len(e.roster) > 0:
		return e.roster[0].ID
	}
	return ""
}

// reselectLocked keeps the current selection when it still exists.
func (e *Engine) reselectLocked() {
	if e.roster.Contains(e.selected) {
		return
	}
	e.selected = e.chooseLocked("")
}

// State returns a snapshot safe to hold onto.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		RoomID:           e.roomID,
		Players:          e.roster.Clone(),
		SelectedPlayerID: e.selected,
		Loading:          e.loading,
		Notice:           e.notice,
		Err:              e.globalErr,
		CanUndo:          e.hist.canUndo(),
		CanRedo:          e.hist.canRedo(),
	}
}

// ApplyEdit applies mutation to one player as a local edit. It reports
// false, and records nothing, when the player does not exist.
func (e *Engine) ApplyEdit(playerID string, mutation func(models.Player) models.Player) bool {
	e.mu.Lock()
	i := e.roster.Index(playerID)
	if i < 0 || e.closed {
		e.mu.Unlock()
		return false
	}
	next := e.roster.Clone()
	next[i] = mutation(next[i].Clone())
	e.commitLocked(next)
	e.mu.Unlock()
	e.notify()
	return true
}

// commitLocked replaces the roster as a local edit: one undo frame, cache
// write, debounced server write.
func (e *Engine) commitLocked(next models.Roster) {
	e.hist.record(e.roster)
	e.swapLocked(next)
}

func (e *Engine) swapLocked(next models.Roster) {
	e.trackChangesLocked(e.roster, next)
	e.roster = next
	e.reselectLocked()
	e.lastEdit = e.cfg.Clock.Now()
	e.editSeq++
	e.persistLocked()
	e.scheduleFlushLocked()
}

func (e *Engine) trackChangesLocked(before, after models.Roster) {
	for _, p := range before {
		if !after.Contains(p.ID) {
			e.tombstones[p.ID] = struct{}{}
			delete(e.unconfirmed, p.ID)
		}
	}
	for _, p := range after {
		delete(e.tombstones, p.ID)
		if old, ok := before.Find(p.ID); !ok || !old.Equal(p) {
			e.unconfirmed[p.ID] = struct{}{}
		}
	}
}

// mergeLocked folds a server roster into the local one.
func (e *Engine) mergeLocked(remote models.Roster) models.Roster {
	return reconcile(remote, e.roster, e.selected, e.tombstones, e.unconfirmed)
}

// confirmLocked records that the roster as of seq reached the server.
func (e *Engine) confirmLocked(seq uint64) {
	if e.editSeq != seq {
		return
	}
	e.pendingFlush = false
	clear(e.tombstones)
	clear(e.unconfirmed)
}

// Undo restores the roster from before the last edit.
func (e *Engine) Undo() bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	frame, ok := e.hist.back(e.roster)
	if ok {
		e.swapLocked(frame)
	}
	e.mu.Unlock()
	if ok {
		e.notify()
	}
	return ok
}

// Redo re-applies the last undone edit.
func (e *Engine) Redo() bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	frame, ok := e.hist.forward(e.roster)
	if ok {
		e.swapLocked(frame)
	}
	e.mu.Unlock()
	if ok {
		e.notify()
	}
	return ok
}

// PollRemote reads the server and merges other players' changes in. It is
// a no-op right after a local edit, and its result is dropped if a local
// edit lands while the read is in flight.
func (e *Engine) PollRemote(ctx context.Context) error {
	e.mu.Lock()
	if e.closed || e.loading || e.globalErr != nil {
		e.mu.Unlock()
		return nil
	}
	now := e.cfg.Clock.Now()
	if !e.lastEdit.IsZero() && now.Sub(e.lastEdit) < e.cfg.PollGuard {
		e.mu.Unlock()
		return nil
	}
	if e.pendingFlush {
		e.mu.Unlock()
		return e.Flush(ctx)
	}
	roomID, seq := e.roomID, e.editSeq
	e.mu.Unlock()

	remote, err := e.remote.Fetch(ctx, roomID)
	if err != nil {
		return fmt.Errorf("poll room %s: %w", roomID, err)
	}

	e.mu.Lock()
	if e.editSeq != seq || e.closed {
		e.mu.Unlock()
		return nil
	}
	merged := e.mergeLocked(remote)
	if merged.Equal(e.roster) {
		e.mu.Unlock()
		return nil
	}
	e.roster = merged
	e.reselectLocked()
	e.persistLocked()
	e.mu.Unlock()
	e.notify()
	return nil
}

// Flush reads the server, merges, and writes the merged roster back. It does
// nothing before the first local edit. A failed write is retried by the next
// poll.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.lastEdit.IsZero() || e.globalErr != nil {
		e.mu.Unlock()
		return nil
	}
	roomID, seq := e.roomID, e.editSeq
	e.mu.Unlock()

	remote, err := e.remote.Fetch(ctx, roomID)
	if err != nil {
		e.markPending()
		return fmt.Errorf("sync room %s: read: %w", roomID, err)
	}

	e.mu.Lock()
	if e.editSeq != seq {
		// A newer edit owns the next write.
		e.mu.Unlock()
		return nil
	}
	merged := e.mergeLocked(remote)
	changed := !merged.Equal(e.roster)
	if changed {
		e.roster = merged
		e.reselectLocked()
		e.persistLocked()
	}
	payload := merged.Clone()
	e.mu.Unlock()
	if changed {
		e.notify()
	}

	if err := e.remote.Save(ctx, roomID, payload); err != nil {
		e.markPending()
		return fmt.Errorf("sync room %s: write: %w", roomID, err)
	}

	e.mu.Lock()
	e.confirmLocked(seq)
	e.mu.Unlock()
	return nil
}

func (e *Engine) markPending() {
	e.mu.Lock()
	e.pendingFlush = true
	e.mu.Unlock()
}

// FlushOnExit makes a last, bounded attempt to get local edits to the
// server. It never fails and never waits longer than Config.ExitBudget.
// When the attempt fails and the engine keeps running, the next poll
// retries the write.
func (e *Engine) FlushOnExit(ctx context.Context) {
	e.mu.Lock()
	if e.lastEdit.IsZero() || e.globalErr != nil {
		e.mu.Unlock()
		return
	}
	e.persistLocked()
	if e.debounce != nil {
		e.debounce.Stop()
	}
	roomID, seq := e.roomID, e.editSeq
	local, active := e.roster.Clone(), e.selected
	tombstones, unconfirmed := maps.Clone(e.tombstones), maps.Clone(e.unconfirmed)
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.ExitBudget)
	defer cancel()
	remote, err := e.remote.Fetch(ctx, roomID)
	if err != nil {
		e.log.Printf("exit flush room=%s: read: %v", roomID, err)
		e.markPending()
		return
	}
	merged := reconcile(remote, local, active, tombstones, unconfirmed)
	if err := e.remote.Beacon(ctx, roomID, merged); err != nil {
		e.log.Printf("exit flush room=%s: beacon: %v", roomID, err)
		e.markPending()
		return
	}
	e.mu.Lock()
	e.confirmLocked(seq)
	e.mu.Unlock()
}

// StartOver drops the room's local state after an unrecoverable error and
// resumes syncing from an empty roster; the next poll brings the server's
// players back in.
func (e *Engine) StartOver() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.globalErr = nil
	e.loading = false
	e.hist = history{limit: e.cfg.HistoryLimit}
	e.roster = models.Roster{}
	e.selected = ""
	e.lastEdit = time.Time{}
	e.pendingFlush = false
	clear(e.tombstones)
	clear(e.unconfirmed)
	if e.debounce != nil {
		e.debounce.Stop()
	}
	e.persistLocked()
	e.startLocked()
	e.mu.Unlock()
	e.notify()
}

// Close stops the background tasks. It does not flush; call FlushOnExit first.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.debounce != nil {
		e.debounce.Stop()
	}
	if e.poller != nil {
		e.poller.Stop()
	}
}

func (e *Engine) startLocked() {
	if e.started || e.closed {
		return
	}
	e.started = true
	e.poller = e.cfg.Clock.AfterFunc(e.cfg.PollInterval, e.pollTick)
}

func (e *Engine) pollTick() {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeout)
	if err := e.PollRemote(ctx); err != nil {
		e.log.Printf("%v", err)
	}
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.poller = e.cfg.Clock.AfterFunc(e.cfg.PollInterval, e.pollTick)
	}
}

func (e *Engine) scheduleFlushLocked() {
	if e.closed {
		return
	}
	if e.debounce != nil {
		e.debounce.Stop()
	}
	e.debounce = e.cfg.Clock.AfterFunc(e.cfg.Debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeout)
		defer cancel()
		if err := e.Flush(ctx); err != nil {
			e.log.Printf("%v", err)
		}
	})
}

// persistLocked writes the roster to the cache. Failures are logged; the
// in-memory roster stays authoritative.
func (e *Engine) persistLocked() {
	st := cache.State{Players: e.roster.Clone(), CurrentPlayerID: e.selected}
	if err := e.cache.Save(context.Background(), e.roomID, st); err != nil {
		e.log.Printf("cache room=%s: %v", e.roomID, err)
	}
}

func (e *Engine) setNoticeLocked(msg string) {
	e.notice = msg
	e.noticeGen++
	gen := e.noticeGen
	e.cfg.Clock.AfterFunc(e.cfg.NoticeTTL, func() {
		e.mu.Lock()
		cleared := e.noticeGen == gen && e.notice != ""
		if cleared {
			e.notice = ""
		}
		e.mu.Unlock()
		if cleared {
			e.notify()
		}
	})
}

func (e *Engine) notify() {
	if e.cfg.OnChange != nil {
		e.cfg.OnChange()
	}
}
