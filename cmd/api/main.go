package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pefman/terraform-tracker/internal/config"
	"github.com/pefman/terraform-tracker/internal/roomstore"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.LoadServer()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	addr := flag.String("addr", cfg.Addr(), "listen address")
	dataFile := flag.String("data", cfg.DataFile, "room data file (.zst for zstd)")
	flag.Parse()

	store := roomstore.Open(roomstore.FileBackend{Path: *dataFile}, logger)
	srv, err := newServer(store, logger, cfg.AllowedOrigin)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Printf("room server listening on http://localhost%s", *addr)
		logger.Printf("data file: %s", *dataFile)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	if err := eg.Wait(); err != nil {
		logger.Fatalf("serve: %v", err)
	}
	logger.Printf("stopped")
}
