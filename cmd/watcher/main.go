package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"salesroom/domain"
	"salesroom/transport"
	"syscall"

	"github.com/joho/godotenv"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Watcher terminated with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	room := domain.Room(cfg.Room)
	if !room.Valid() {
		return fmt.Errorf("unknown room %q", cfg.Room)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := transport.NewClient(cfg.Addr, cfg.Token)
	if err != nil {
		return err
	}
	defer client.Close()

	session, err := client.Connect(ctx)
	if err != nil {
		return err
	}
	if err := session.Join(room); err != nil {
		return err
	}

	renderer := NewRenderer(os.Stdout, cfg.Colours)
	for {
		env, err := session.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
				return nil
			}
			return err
		}
		if err := renderer.Render(env); err != nil {
			fmt.Fprintf(os.Stderr, "cannot render %s: %v\n", env.Type, err)
		}
	}
}
