package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/endguard/internal/definitions"
	"github.com/KirkDiggler/endguard/internal/handlers/api/v1alpha1"
	"github.com/KirkDiggler/endguard/internal/orchestrators/encounter"
	"github.com/KirkDiggler/endguard/internal/services/tickloop"
)

const shutdownTimeout = 30 * time.Second

var (
	grpcPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the encounter server",
	Long: `Start the tick loop, the definitions watcher and the gRPC encounter service.
Sessions saved by the previous run are restored before the first tick.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&grpcPort, "port", 0, "gRPC server port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, gracefully stopping...")
		cancel()
	}()

	a, err := buildApp(ctx, cfg, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	restored, err := a.encounters.Restore(ctx)
	if err != nil {
		slog.Warn("Failed to restore sessions", "error", err)
	} else if restored.Worlds > 0 {
		slog.Info("Restored sessions", "worlds", restored.Worlds, "respawns", restored.Respawns)
	}

	loop, err := tickloop.New(&tickloop.Config{
		TicksPerSecond: cfg.TickRate,
		Step:           a.step,
	})
	if err != nil {
		return fmt.Errorf("failed to create tick loop: %w", err)
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = loop.Run(loopCtx)
	}()

	go a.watchDefinitions(ctx, loop)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	recoveryOpt := grpc_recovery.WithRecoveryHandler(func(p any) error {
		slog.Error("Recovered from handler panic", "panic", p)
		return status.Error(codes.Internal, "internal error")
	})

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(interceptorLogger(logger)),
			grpc_recovery.UnaryServerInterceptor(recoveryOpt),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(interceptorLogger(logger)),
			grpc_recovery.StreamServerInterceptor(recoveryOpt),
		),
	)

	encounterHandler, err := v1alpha1.NewEncounterHandler(&v1alpha1.EncounterHandlerConfig{
		EncounterService: a.encounters,
		Executor:         loop,
		History:          a.history,
	})
	if err != nil {
		return fmt.Errorf("failed to create encounter handler: %w", err)
	}

	v1alpha1.RegisterEncounterServiceServer(srv, encounterHandler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(v1alpha1.EncounterServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("gRPC server starting", "port", cfg.Server.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errChan:
	}

	slog.Info("Shutting down gRPC server...")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-shutdownCtx.Done():
		slog.Warn("Graceful shutdown timeout exceeded, forcing stop")
		srv.Stop()
	case <-stopped:
		slog.Info("Server stopped gracefully")
	}

	// Encounter state is only touched from the loop, so it stops before the
	// snapshot is taken.
	stopLoop()
	<-loopDone

	if err := saveSessions(a.encounters, shutdownTimeout); err != nil {
		slog.Error("Failed to save sessions", "error", err)
	}

	return serveErr
}

// saveSessions snapshots encounter state under a fresh deadline. The gRPC
// drain may already have used up the shutdown context.
func saveSessions(svc encounter.Service, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return svc.Shutdown(ctx)
}

// watchDefinitions reloads definitions on the loop whenever files settle
func (a *app) watchDefinitions(ctx context.Context, loop *tickloop.Loop) {
	watcher, err := definitions.NewWatcher(&definitions.WatcherConfig{
		Dir: a.loader.Dir(),
		OnChange: func(ctx context.Context, files []string) {
			slog.Info("Definitions changed", "files", files)
			err := loop.Do(ctx, func(ctx context.Context) error {
				out, err := a.reloader.Reload(ctx)
				if err != nil {
					return err
				}
				logReload(out)
				return nil
			})
			if err != nil {
				slog.Warn("Definitions reload failed, keeping current catalog", "error", err)
			}
		},
	})
	if err != nil {
		slog.Warn("Definitions hot reload disabled", "dir", a.loader.Dir(), "error", err)
		return
	}

	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("Definitions watcher stopped", "error", err)
	}
}
