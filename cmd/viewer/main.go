package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"salesroom/internal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
)

const defaultDebugPort = 8081

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if config.DebugPort == 0 {
		config.DebugPort = defaultDebugPort
	}

	// 2. Open Badger in Read-Only mode next to a running server
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Start Debug Server Only
	viewerStats := func() map[string]any {
		return map[string]any{
			"status": "viewer (read-only)",
			"time":   time.Now().Format(time.RFC822),
		}
	}
	server := internal.StartDebugServer(db, config.DebugPort, "/inspect", internal.EventMapper, viewerStats)
	fmt.Printf("Viewer started at http://localhost:%d/inspect\n", config.DebugPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}
