package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"salesroom/auth"
	"salesroom/clock"
	"salesroom/crm"
	"salesroom/domain"
	"salesroom/internal"
	"salesroom/observability"
	"salesroom/repositories"
	"salesroom/runtime"
	"salesroom/runtime/workers"
	"salesroom/sink"
	"salesroom/transport"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes reported to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Salesroom terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a fatal error.
// Deferred cleanups run before main exits with the returned code.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	location, err := config.Location()
	if err != nil {
		return exitConfig, err
	}
	if config.DailyResetAt != "" {
		if _, err := workers.ParseResetTime(config.DailyResetAt); err != nil {
			return exitConfig, err
		}
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Setup Supervision & Orchestration
	counters := observability.NewCounters()
	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	registry := runtime.NewRegistry()
	eventRepository := repositories.NewEventRepository(db, logger, config.LimitEvents)

	orchestrator := runtime.NewOrchestrator(logger, clock.Real{}, supervisor, registry, counters, runtime.Options{
		BufferSize:     config.BufferSize,
		SinkTimeout:    config.SinkTimeout,
		Cooldown:       config.DedupCooldown,
		Retention:      config.DedupRetention,
		AlertInterval:  config.AlertInterval,
		AlertWindow:    config.AlertWindow,
		HealthInterval: config.HealthInterval,
		Location:       location,
		DailyResetAt:   config.DailyResetAt,
	})
	orchestrator.Add(sink.NewDiskSink(eventRepository, logger))

	if config.CRMBaseURL != "" {
		crmClient := crm.NewClient(logger, config.CRMBaseURL, config.CRMAPIToken, config.CRMTimeout)
		orchestrator.Add(sink.NewEnrichmentSink(crmClient, orchestrator, logger))
		logger.Info("CRM enrichment enabled", "base_url", config.CRMBaseURL)
	}

	if config.DebugPort > 0 {
		endpoint := "/inspect"
		debugServer := internal.StartDebugServer(db, config.DebugPort, endpoint, internal.EventMapper, func() map[string]any {
			stats := map[string]any{
				"dashboards": registry.Count(domain.DashboardRoom),
				"controls":   registry.Count(domain.ControlRoom),
			}
			for k, v := range counters.Snapshot() {
				stats[k] = v
			}
			return stats
		})
		defer func() { _ = debugServer.Close() }()
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	// 5. Start the Engine
	if err := orchestrator.Start(ctx); err != nil {
		return exitRuntime, fmt.Errorf("orchestrator error: %w", err)
	}

	// 6. gRPC Server Setup
	listener, err := net.Listen("tcp", config.Address())
	if err != nil {
		orchestrator.Stop()
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.Address(), err)
	}

	authenticator := auth.NewAuthenticator(config.AuthSecret, config.AuthTokenDuration)
	if authenticator == nil {
		logger.Warn("AUTH_SECRET is empty, connections are not authenticated")
	}
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc3.UnaryLoggingInterceptor(logger),
			authenticator.UnaryInterceptor(),
		),
		grpc.ChainStreamInterceptor(authenticator.StreamInterceptor()),
	)
	transport.RegisterDashboardServer(s, transport.NewServer(logger, orchestrator, authenticator, config.ConnectionBufferSize))

	go func() {
		logger.Info("Starting gRPC server", "address", config.Address(), "at", time.Now().UTC())
		for serviceName := range s.GetServiceInfo() {
			logger.Debug("gRPC exposed service", "name", serviceName)
		}
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 8. Graceful Shutdown: streams end first, then workers drain the event channel.
	logger.Info("Shutting down gracefully...")
	s.GracefulStop()
	orchestrator.Stop()
	logger.Info("Program stopped cleanly", "counters", counters.Snapshot())

	return code, runErr
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
