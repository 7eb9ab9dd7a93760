// Package view renders rooms as plain text for the terminal client.
package view

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pefman/terraform-tracker/internal/engine"
	"github.com/pefman/terraform-tracker/internal/models"
)

// CorruptMessage is shown when the engine cannot recover any room state.
const CorruptMessage = "local data may be corrupt; return home and start over"

// Roster renders the home view: one numbered line per player, the selected
// one marked with '*'.
func Roster(w io.Writer, roomID string, players models.Roster, selectedID string) {
	fmt.Fprintf(w, "room %s, %d player(s)\n", roomID, len(players))
	if len(players) == 0 {
		fmt.Fprintln(w, "  no players yet; add one with: add <name>")
		return
	}
	for i, p := range players {
		mark := " "
		if p.ID == selectedID {
			mark = "*"
		}
		fmt.Fprintf(w, " %s %d. %s (TR %d)\n", mark, i+1, p.Name, p.TR)
	}
}

// Player renders the player view for the engine's selected player.
func Player(w io.Writer, st engine.State) {
	fmt.Fprintf(w, "roomId: %s  currentPlayerId: %s\n", st.RoomID, st.SelectedPlayerID)
	switch {
	case st.Err != nil:
		if errors.Is(st.Err, engine.ErrStateUnavailable) {
			fmt.Fprintln(w, CorruptMessage)
		} else {
			fmt.Fprintf(w, "error: %v\n", st.Err)
		}
		return
	case st.Loading:
		fmt.Fprintln(w, "loading...")
		return
	}
	p, ok := st.Selected()
	if !ok {
		fmt.Fprintln(w, "no player selected; go home and add one")
		return
	}
	fmt.Fprintf(w, "%s  TR %d   %s %s\n", p.Name, p.TR, flag("undo", st.CanUndo), flag("redo", st.CanRedo))
	if st.Notice != "" {
		fmt.Fprintf(w, "! %s\n", st.Notice)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tresource\tamount\tproduction\t")
	for i, r := range p.Resources {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t\n", i+1, r.Name, r.Amount, production(r.Production))
	}
	tw.Flush()
}

// Monitor renders every player side by side as a read-only grid.
func Monitor(w io.Writer, roomID string, players models.Roster) {
	fmt.Fprintf(w, "monitor: room %s\n", roomID)
	if len(players) == 0 {
		fmt.Fprintln(w, "(no players)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	head := make([]string, 0, len(players))
	tr := make([]string, 0, len(players))
	rows := 0
	for _, p := range players {
		head = append(head, p.Name)
		tr = append(tr, fmt.Sprintf("TR: %d", p.TR))
		rows = max(rows, len(p.Resources))
	}
	writeRow(tw, head)
	writeRow(tw, tr)
	for i := range rows {
		cells := make([]string, len(players))
		for j, p := range players {
			if i < len(p.Resources) {
				r := p.Resources[i]
				cells[j] = fmt.Sprintf("%s: %d (%s)", r.Name, r.Amount, production(r.Production))
			}
		}
		writeRow(tw, cells)
	}
	tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
}

func production(v int) string {
	if v > 0 {
		return fmt.Sprintf("+%d", v)
	}
	return fmt.Sprintf("%d", v)
}

func flag(name string, on bool) string {
	if on {
		return "[" + name + "]"
	}
	return "[" + strings.Repeat("-", len(name)) + "]"
}
