package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/pefman/terraform-tracker/internal/api"
	"github.com/pefman/terraform-tracker/internal/config"
	"github.com/pefman/terraform-tracker/internal/models"
	"github.com/pefman/terraform-tracker/internal/view"
)

// ========================= Monitor view =========================

const clearScreen = "\033[H\033[2J"

func runMonitor(ctx context.Context, args []string, cfg config.Client, logger *log.Logger) error {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	room := fs.String("room", models.DefaultRoomID, "room id")
	stream := fs.Bool("stream", false, "receive pushed updates over the websocket endpoint instead of polling")
	interval := fs.Duration("interval", cfg.MonitorInterval, "poll interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	client := api.NewClientWithConfig(api.Config{BaseURL: cfg.APIURL, Timeout: cfg.HTTPTimeout})
	draw := func(players models.Roster) { drawMonitor(os.Stdout, *room, players) }

	if *stream {
		err := client.Stream(ctx, *room, draw)
		if err == nil || ctx.Err() != nil {
			return nil
		}
		logger.Printf("stream: %v; falling back to polling every %s", err, *interval)
	}
	pollMonitor(ctx, client, *room, *interval, draw, logger)
	return nil
}

type roomFetcher interface {
	Fetch(ctx context.Context, roomID string) (models.Roster, error)
}

// pollMonitor redraws the room right away and then on every tick. A failed
// read keeps the last grid on screen.
func pollMonitor(ctx context.Context, f roomFetcher, roomID string, every time.Duration, draw func(models.Roster), logger *log.Logger) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		rctx, cancel := context.WithTimeout(ctx, every)
		players, err := f.Fetch(rctx, roomID)
		cancel()
		switch {
		case err == nil:
			draw(players)
		case ctx.Err() == nil:
			logger.Printf("monitor fetch room=%s: %v", roomID, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if ctx.Err() != nil {
				return
			}
		}
	}
}

func drawMonitor(w io.Writer, roomID string, players models.Roster) {
	fmt.Fprint(w, clearScreen)
	view.Monitor(w, roomID, players)
	fmt.Fprintf(w, "\nupdated %s\n", time.Now().Format("15:04:05"))
}
