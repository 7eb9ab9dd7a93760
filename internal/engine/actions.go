package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/pefman/terraform-tracker/internal/game"
	"github.com/pefman/terraform-tracker/internal/models"
)

// ============ Player view actions (act on the selected player) ============

// editSelected runs fn against the selected player. Rejections from the
// rules become a transient notice and leave state and history untouched.
func (e *Engine) editSelected(fn func(models.Player) (models.Player, error)) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	i := e.roster.Index(e.selected)
	if i < 0 {
		e.mu.Unlock()
		return ErrNoPlayer
	}
	p, err := fn(e.roster[i].Clone())
	if err != nil {
		notice := errors.Is(err, game.ErrInsufficient) || errors.Is(err, game.ErrNegativeDelta)
		if notice {
			e.setNoticeLocked(err.Error())
		}
		e.mu.Unlock()
		if notice {
			e.notify()
		}
		return err
	}
	next := e.roster.Clone()
	next[i] = p
	e.commitLocked(next)
	e.mu.Unlock()
	e.notify()
	return nil
}

func (e *Engine) Add(resourceID string, delta int) error {
	return e.editSelected(func(p models.Player) (models.Player, error) {
		return game.Add(p, resourceID, delta)
	})
}

// Subtract rejects a delta larger than the amount held with a notice.
func (e *Engine) Subtract(resourceID string, delta int) error {
	return e.editSelected(func(p models.Player) (models.Player, error) {
		return game.Subtract(p, resourceID, delta)
	})
}

func (e *Engine) SetProduction(resourceID string, value int) error {
	return e.editSelected(func(p models.Player) (models.Player, error) {
		return e.cfg.Rules.SetProduction(p, resourceID, value)
	})
}

func (e *Engine) AdjustTR(delta int) error {
	return e.editSelected(func(p models.Player) (models.Player, error) {
		return e.cfg.Rules.AdjustTR(p, delta), nil
	})
}

// Produce runs the production phase for the selected player.
func (e *Engine) Produce() error {
	return e.editSelected(func(p models.Player) (models.Player, error) {
		return game.Produce(p), nil
	})
}

func (e *Engine) ResetPlayer() error {
	return e.editSelected(func(p models.Player) (models.Player, error) {
		return e.cfg.Rules.Reset(p), nil
	})
}

// ============ Home view actions (act on the roster) ============

// AddPlayer appends a new player built from the rules template and selects it.
func (e *Engine) AddPlayer(name string) (models.Player, error) {
	p, err := e.cfg.Rules.NewPlayer(name)
	if err != nil {
		return models.Player{}, err
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return models.Player{}, ErrClosed
	}
	next := append(e.roster.Clone(), p.Clone())
	e.selected = p.ID
	e.commitLocked(next)
	e.mu.Unlock()
	e.notify()
	return p, nil
}

// RemovePlayer deletes a player. If it was selected, the first remaining
// player is selected instead.
func (e *Engine) RemovePlayer(id string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	i := e.roster.Index(id)
	if i < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w %q", ErrUnknownPlayer, id)
	}
	next := e.roster.Clone()
	next = append(next[:i], next[i+1:]...)
	e.commitLocked(next)
	e.mu.Unlock()
	e.notify()
	return nil
}

// ResetAll removes every player from the room.
func (e *Engine) ResetAll() {
	e.mu.Lock()
	if len(e.roster) > 0 && !e.closed {
		e.commitLocked(models.Roster{})
	}
	e.mu.Unlock()
	e.notify()
}

// SelectPlayer changes the active player. Selection is client-local: it is
// cached but never sent to the server and is not an undoable edit.
func (e *Engine) SelectPlayer(id string) error {
	e.mu.Lock()
	if !e.roster.Contains(id) {
		e.mu.Unlock()
		return fmt.Errorf("%w %q", ErrUnknownPlayer, id)
	}
	e.selected = id
	e.persistLocked()
	e.mu.Unlock()
	e.notify()
	return nil
}

// SyncNow is used when leaving the player view for the home view: the
// pending debounced write is performed right away.
func (e *Engine) SyncNow(ctx context.Context) error {
	e.mu.Lock()
	if e.debounce != nil {
		e.debounce.Stop()
	}
	e.mu.Unlock()
	return e.Flush(ctx)
}
