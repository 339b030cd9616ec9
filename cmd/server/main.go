package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"markovarena/internal/api"
	"markovarena/internal/history"
	"markovarena/internal/hub"
	"markovarena/internal/room"
)

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags)
	if err := run(logger); err != nil {
		logger.Fatal(err)
	}
}

// run owns the server lifecycle so its defers (the history database close)
// fire on every exit path before main decides the process status.
func run(logger *log.Logger) error {
	var (
		addr   = flag.String("addr", ":"+getenv("PORT", "8000"), "listen address")
		dbPath = flag.String("db", getenv("HISTORY_DB", "markovarena.db"), "game history database path (empty disables archiving)")
		origin = flag.String("origin", getenv("FRONTEND_URL", "*"), "allowed CORS origin")
	)
	flag.Parse()

	var archive history.DB
	if *dbPath != "" {
		db, err := history.NewSQLiteDB(*dbPath)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		archive = db
	}

	h := hub.New()
	registry := room.NewRegistry(h, archive)
	server := api.NewServer(registry, h, archive, *origin)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	logger.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
