package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/pefman/terraform-tracker/internal/api"
	"github.com/pefman/terraform-tracker/internal/cache"
	"github.com/pefman/terraform-tracker/internal/config"
	"github.com/pefman/terraform-tracker/internal/engine"
	"github.com/pefman/terraform-tracker/internal/game"
	"github.com/pefman/terraform-tracker/internal/models"
)

// Build metadata injected via -ldflags at build time
var (
	buildVersion = "dev"
	buildTime    = ""
)

const usage = `usage:
  game home    [-room ID]               manage the room's players
  game play    [-room ID] [-player ID]  track one player's resources
  game monitor [-room ID] [-stream]     read-only view of every player
  game version`

func main() {
	logger := log.New(os.Stderr, "[game] ", log.LstdFlags)
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cfg, err := config.LoadClient()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "home", "play":
		err = runInteractive(ctx, cmd, args, cfg, logger)
	case "monitor":
		err = runMonitor(ctx, args, cfg, logger)
	case "version":
		fmt.Printf("terraform-tracker %s %s\n", buildVersion, buildTime)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalf("%s: %v", cmd, err)
	}
}

// ========================= Session setup =========================

func runInteractive(ctx context.Context, mode string, args []string, cfg config.Client, logger *log.Logger) error {
	fs := flag.NewFlagSet(mode, flag.ExitOnError)
	room := fs.String("room", "", "room id")
	playerID := fs.String("player", "", "player to select (play only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rules, err := game.LoadRules(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	store, err := cache.OpenSQLite(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	roomID, err := pickRoom(ctx, store, *room, mode == "home")
	if err != nil {
		return err
	}

	client := api.NewClientWithConfig(api.Config{BaseURL: cfg.APIURL, Timeout: cfg.HTTPTimeout})
	s := newSession(os.Stdout, logger)
	eng, err := engine.New(client, store, engine.Config{
		Rules:          rules,
		Debounce:       cfg.SyncDebounce,
		PollInterval:   cfg.PollInterval,
		PollGuard:      cfg.PollGuard,
		NoticeTTL:      cfg.NoticeTTL,
		RequestTimeout: cfg.HTTPTimeout,
		HistoryLimit:   cfg.HistoryLimit,
		Logger:         log.New(os.Stderr, "[sync] ", log.LstdFlags),
		OnChange:       s.changed,
	})
	if err != nil {
		return err
	}
	s.eng = eng
	defer eng.Close()
	defer eng.FlushOnExit(context.Background())

	if mode == "play" {
		s.mode.Store(int32(modePlay))
	}
	if err := eng.Initialize(ctx, roomID, *playerID); err != nil {
		// The view shows the corrupt-state message; home still works.
		logger.Printf("initialize room=%s: %v", roomID, err)
	}
	return s.run(ctx, os.Stdin)
}

// pickRoom resolves the room id: flag, then the last room used, then a new
// room (home) or the shared default room (play). The result is remembered.
func pickRoom(ctx context.Context, store *cache.Store, flagRoom string, fresh bool) (string, error) {
	roomID := flagRoom
	if roomID == "" {
		last, err := store.LastRoom(ctx)
		if err != nil {
			return "", fmt.Errorf("read last room: %w", err)
		}
		roomID = last
	}
	if roomID == "" {
		if fresh {
			roomID = uuid.NewString()
		} else {
			roomID = models.DefaultRoomID
		}
	}
	if err := store.SetLastRoom(ctx, roomID); err != nil {
		return "", fmt.Errorf("remember room: %w", err)
	}
	return roomID, nil
}
