package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pefman/terraform-tracker/internal/engine"
	"github.com/pefman/terraform-tracker/internal/game"
	"github.com/pefman/terraform-tracker/internal/models"
	"github.com/pefman/terraform-tracker/internal/view"
)

type mode int32

const (
	modeHome mode = iota
	modePlay
)

var errQuit = errors.New("quit")

const homeHelp = `commands: add <name> | del <n> | sel <n> | reset-all | play | monitor | quit`

const playHelp = `commands: + <n> [amount] | - <n> [amount] | prod <n> <value> | p+ <n> | p- <n>
          tr+ | tr- | produce | reset | undo | redo | home | quit`

// session is one interactive terminal on top of an engine. Output is
// redrawn by a single goroutine whenever the engine reports a change.
type session struct {
	eng  *engine.Engine
	log  *log.Logger
	mode atomic.Int32

	outMu sync.Mutex
	out   io.Writer

	redraw chan struct{}
}

func newSession(out io.Writer, logger *log.Logger) *session {
	return &session{out: out, log: logger, redraw: make(chan struct{}, 1)}
}

// changed is the engine's OnChange hook.
func (s *session) changed() {
	select {
	case s.redraw <- struct{}{}:
	default:
	}
}

func (s *session) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	s.render()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.redraw:
			s.render()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := s.handle(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				s.printf("%v\n", err)
				s.changed()
			}
		}
	}
}

func (s *session) render() {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	st := s.eng.State()
	fmt.Fprintln(s.out)
	if mode(s.mode.Load()) == modePlay {
		view.Player(s.out, st)
		fmt.Fprintln(s.out, playHelp)
	} else {
		view.Roster(s.out, st.RoomID, st.Players, st.SelectedPlayerID)
		if st.Err != nil {
			fmt.Fprintf(s.out, "%s (reset-all starts over)\n", view.CorruptMessage)
		}
		fmt.Fprintln(s.out, homeHelp)
	}
	fmt.Fprint(s.out, "> ")
}

func (s *session) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// handle runs one command line in the current mode.
func (s *session) handle(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		s.changed()
		return nil
	}
	switch fields[0] {
	case "quit", "exit":
		return errQuit
	case "help", "?":
		s.changed()
		return nil
	}
	if mode(s.mode.Load()) == modePlay {
		return s.handlePlay(ctx, fields)
	}
	return s.handleHome(ctx, fields, line)
}

// ========================= Home view =========================

func (s *session) handleHome(ctx context.Context, fields []string, line string) error {
	st := s.eng.State()
	switch fields[0] {
	case "add":
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "add"))
		if _, err := s.eng.AddPlayer(name); err != nil {
			return err
		}
		return s.sync(ctx)
	case "del":
		p, err := pickPlayer(st.Players, fields)
		if err != nil {
			return err
		}
		if err := s.eng.RemovePlayer(p.ID); err != nil {
			return err
		}
		return s.sync(ctx)
	case "sel":
		p, err := pickPlayer(st.Players, fields)
		if err != nil {
			return err
		}
		return s.eng.SelectPlayer(p.ID)
	case "reset-all":
		if st.Err != nil {
			s.eng.StartOver()
			return nil
		}
		s.eng.ResetAll()
		return s.sync(ctx)
	case "play":
		if _, ok := st.Selected(); !ok {
			return errors.New("select or add a player first")
		}
		s.mode.Store(int32(modePlay))
		s.changed()
		return nil
	case "monitor":
		s.printf("run: game monitor -room %s\n", st.RoomID)
		return nil
	}
	return fmt.Errorf("unknown command %q; %s", fields[0], homeHelp)
}

// sync writes home-view changes right away instead of after the debounce.
func (s *session) sync(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()
	if err := s.eng.SyncNow(ctx); err != nil {
		s.log.Printf("%v (will retry)", err)
	}
	return nil
}

func pickPlayer(players models.Roster, fields []string) (models.Player, error) {
	if len(fields) < 2 {
		return models.Player{}, fmt.Errorf("usage: %s <n>", fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 || n > len(players) {
		return models.Player{}, fmt.Errorf("no player #%s", fields[1])
	}
	return players[n-1], nil
}

// ========================= Player view =========================

func (s *session) handlePlay(ctx context.Context, fields []string) error {
	switch fields[0] {
	case "+", "-":
		r, err := s.resourceArg(fields)
		if err != nil {
			return err
		}
		amount := 1
		if len(fields) > 2 {
			if amount, err = strconv.Atoi(fields[2]); err != nil {
				return fmt.Errorf("bad amount %q", fields[2])
			}
		}
		if fields[0] == "+" {
			return ignoreRejection(s.eng.Add(r.ID, amount))
		}
		return ignoreRejection(s.eng.Subtract(r.ID, amount))
	case "prod":
		r, err := s.resourceArg(fields)
		if err != nil {
			return err
		}
		if len(fields) < 3 {
			return errors.New("usage: prod <n> <value>")
		}
		v, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("bad value %q", fields[2])
		}
		return s.eng.SetProduction(r.ID, v)
	case "p+", "p-":
		r, err := s.resourceArg(fields)
		if err != nil {
			return err
		}
		if fields[0] == "p+" {
			return s.eng.SetProduction(r.ID, r.Production+1)
		}
		return s.eng.SetProduction(r.ID, r.Production-1)
	case "tr+":
		return s.eng.AdjustTR(1)
	case "tr-":
		return s.eng.AdjustTR(-1)
	case "produce":
		return s.eng.Produce()
	case "reset":
		return s.eng.ResetPlayer()
	case "undo":
		s.eng.Undo()
		return nil
	case "redo":
		s.eng.Redo()
		return nil
	case "home":
		s.eng.FlushOnExit(ctx)
		s.mode.Store(int32(modeHome))
		s.changed()
		return nil
	}
	return fmt.Errorf("unknown command %q", fields[0])
}

// resourceArg maps the 1-based resource number in fields[1] to the selected
// player's resource, as of one state snapshot.
func (s *session) resourceArg(fields []string) (models.Resource, error) {
	p, ok := s.eng.State().Selected()
	if !ok {
		return models.Resource{}, engine.ErrNoPlayer
	}
	if len(fields) < 2 {
		return models.Resource{}, fmt.Errorf("usage: %s <n>", fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 || n > len(p.Resources) {
		return models.Resource{}, fmt.Errorf("no resource #%s", fields[1])
	}
	return p.Resources[n-1], nil
}

// ignoreRejection drops errors the engine already shows as a notice.
func ignoreRejection(err error) error {
	if errors.Is(err, game.ErrInsufficient) || errors.Is(err, game.ErrNegativeDelta) {
		return nil
	}
	return err
}
