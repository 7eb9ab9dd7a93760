package engine

import (
	"slices"

	"github.com/pefman/terraform-tracker/internal/models"
)

// history is a linear undo/redo log of full roster snapshots.
type history struct {
	undo  []models.Roster
	redo  []models.Roster
	limit int
}

// record pushes the roster as it was before an edit. Any redo frames become
// unreachable and are dropped.
func (h *history) record(before models.Roster) {
	h.undo = append(h.undo, before.Clone())
	if h.limit > 0 && len(h.undo) > h.limit {
		h.undo = slices.Clone(h.undo[len(h.undo)-h.limit:])
	}
	h.redo = nil
}

func (h *history) back(current models.Roster) (models.Roster, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	frame := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current.Clone())
	return frame, true
}

func (h *history) forward(current models.Roster) (models.Roster, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	frame := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current.Clone())
	return frame, true
}

func (h *history) canUndo() bool { return len(h.undo) > 0 }
func (h *history) canRedo() bool { return len(h.redo) > 0 }
