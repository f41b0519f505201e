package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/grpc/envserver"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/monitoring"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	maxEnvs := flag.Int("max-envs", -1, "Maximum concurrent environments (-1 to use config default)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	watch := flag.Bool("watch-config", false, "Reload the config file on change")
	flag.Parse()

	cfg, logger, err := config.Bootstrap(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}

	// Use config defaults if not overridden by flags
	if *port == -1 {
		*port = cfg.Server.GRPCServer.Port
	}
	if *host == "" {
		*host = cfg.Server.GRPCServer.Host
	}
	if *maxEnvs == -1 {
		*maxEnvs = cfg.Server.GRPCServer.MaxEnvs
	}
	if !*enableReflection {
		*enableReflection = cfg.Server.GRPCServer.EnableReflection
	}

	defaults, err := cfg.EnvConfig(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid environment config")
	}

	logger.Info().
		Int("port", *port).
		Str("host", *host).
		Int("max_envs", *maxEnvs).
		Int("rows", cfg.Env.Rows).
		Int("cols", cfg.Env.Cols).
		Msg("Starting gRPC environment server")

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to listen")
	}

	manager := envserver.NewEnvManager(envserver.ManagerConfig{
		MaxEnvs:         *maxEnvs,
		MaxRows:         cfg.Server.GRPCServer.MaxRows,
		MaxCols:         cfg.Server.GRPCServer.MaxCols,
		IdleTimeout:     cfg.Server.GRPCServer.IdleTimeout,
		CleanupInterval: cfg.Server.GRPCServer.CleanupInterval,
		Defaults:        defaults,
	}, logger)
	grpcServer, healthServer := envserver.NewGRPCServer(envserver.NewServer(manager, logger), logger, *enableReflection)
	if *enableReflection {
		logger.Info().Msg("gRPC reflection enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go manager.Run(ctx)

	monitor := monitoring.NewMonitor(monitoring.DefaultInterval, monitoring.DefaultThreshold, logger)
	monitor.Watch("active_envs", manager.ActiveEnvs)
	go monitor.Run(ctx)

	if *watch {
		// Only new environments pick up reloaded values
		config.WatchConfig(logger, func(next *config.Config) {
			ec, err := next.EnvConfig(logger)
			if err != nil {
				logger.Error().Err(err).Msg("Keeping previous environment defaults")
				return
			}
			manager.SetDefaults(ec)
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(envserver.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		// Give ongoing requests time to complete
		time.Sleep(time.Duration(cfg.Server.GRPCServer.GracefulShutdownDelay) * time.Second)

		logger.Info().Msg("Gracefully stopping gRPC server")
		grpcServer.GracefulStop()
		cancel()
	}()

	logger.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal().Err(err).Msg("Failed to serve")
		}
	}()

	<-ctx.Done()
	logger.Info().Int("active_envs", manager.ActiveEnvs()).Msg("Server shutdown complete")
}
