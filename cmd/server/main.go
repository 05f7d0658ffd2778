package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/clock"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	api "fieldservice-backend/internal/api/grpc"
	"fieldservice-backend/internal/api/grpc/interceptor"
	httpapi "fieldservice-backend/internal/api/http"
	"fieldservice-backend/internal/broadcast"
	"fieldservice-backend/internal/config"
	"fieldservice-backend/internal/jobs"
	"fieldservice-backend/internal/logger"
	"fieldservice-backend/internal/metrics"
	"fieldservice-backend/internal/repository"
	"fieldservice-backend/internal/repository/memory"
	"fieldservice-backend/internal/repository/postgres"
	"fieldservice-backend/internal/scheduler"
	"fieldservice-backend/internal/security"
	"fieldservice-backend/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting field service backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetHTTPAddress(), "grpc_address", cfg.GetGRPCAddress())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize store", "type", cfg.Store.Type, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Metrics
	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collector,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Broadcaster and services
	clk := clock.WallClock
	broadcaster := broadcast.New(broadcast.Config{
		Clock:          clk,
		WelcomeMessage: cfg.Broadcast.WelcomeMessage,
		Metrics:        collector,
	})
	defer broadcaster.Close()

	coordinatorSvc := service.NewCoordinatorService(store, broadcaster, clk, collector)
	inventorySvc := service.NewInventoryService(store)
	statsSvc := service.NewStatsService(store, clk)

	// Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	authInterceptor := interceptor.NewAuthInterceptor(tokenManager)

	// HTTP server
	notifications := httpapi.NewNotificationHandler(broadcaster, httpapi.NotificationConfig{
		WriteWait:       cfg.Broadcast.WriteWait(),
		PongWait:        cfg.Broadcast.PongWait(),
		MaxMessageBytes: cfg.Broadcast.MaxMessageBytes,
	})
	router := httpapi.NewRouter(httpapi.RouterConfig{
		API:           httpapi.NewAPI(coordinatorSvc, inventorySvc, statsSvc),
		Notifications: notifications,
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Tokens:        tokenManager,
	})
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC server
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(authInterceptor.Unary()),
	)
	api.RegisterCoordinatorServiceServer(grpcServer, api.NewCoordinatorHandler(coordinatorSvc))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		os.Exit(1)
	}

	// Scheduled jobs
	jobRunner := jobs.NewJobRunner(store, broadcaster, clk, collector, cfg)
	sched, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		logger.Error("Failed to initialize scheduler", "error", err)
		os.Exit(1)
	}
	sched.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("gRPC server listening", "address", lis.Addr().String())
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		healthServer.Shutdown()
		sched.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Hijacked websocket connections are not tracked by http.Server.
		notifications.Shutdown()
		err := httpServer.Shutdown(shutdownCtx)

		done := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

// openStore returns the configured ledger store and a func releasing it.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	if cfg.Store.Type == config.StoreMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.NewStore(clock.WallClock), func() {}, nil
	}

	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Database schema migrated")
	}
	return postgres.NewStore(db), func() { db.Close() }, nil
}
