// ============================================================================
// backend/cmd/dashboard/main.go
// Entry point for the Dashboard Gateway
// ============================================================================

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"portal_dashboard/backend/internal/gateway"
	"portal_dashboard/backend/internal/logger"
	"portal_dashboard/backend/internal/shared"
	"portal_dashboard/backend/internal/store"
)

const healthService = "portal.DashboardGateway"

func main() {
	// Load environment variables
	_ = shared.LoadEnv(".env")

	// Load and validate configuration
	config, err := shared.LoadGatewayConfig()
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := shared.ValidateGatewayConfig(config); err != nil {
		logger.Log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(&config.ServiceConfig)
	log := logger.Log.WithField("service", config.ServiceName)

	if shared.IsDevelopment(&config.ServiceConfig) {
		shared.PrintGatewayConfig(config)
	}

	// Bundle store: MongoDB when configured, otherwise process memory
	var bundles store.Store
	if config.MongoDB.Enabled() {
		mongoClient, db, err := shared.ConnectMongoDB(&config.MongoDB)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			if err := shared.DisconnectMongoDB(mongoClient); err != nil {
				log.WithError(err).Error("Error disconnecting from MongoDB")
			}
		}()

		mongoStore := store.NewMongoStore(db, config.Store.Collection)
		if err := mongoStore.EnsureIndexes(context.Background()); err != nil {
			log.WithError(err).Warn("Could not create bundle indexes")
		}
		bundles = mongoStore
	} else {
		log.Info("MONGO_URI not set, keeping dashboard bundles in memory")
		bundles = store.NewMemoryStore(nil)
	}

	sweeper := store.NewSweeper(bundles, config.Store.Retention, log)
	if err := sweeper.Start(config.Store.SweepCron); err != nil {
		log.Fatalf("Failed to start bundle sweeper: %v", err)
	}
	defer sweeper.Stop()

	// HTTP gateway
	deps := gateway.NewDependencies(config, bundles, log)
	server := &http.Server{
		Addr:         ":" + config.HTTPPort,
		Handler:      gateway.SetupRoutes(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: config.PortalAPI.Timeout*2 + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Gateway listening on port %s", config.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// gRPC health endpoint for orchestrators
	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(config.GRPC.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(config.GRPC.MaxSendMsgSize),
		grpc.ConnectionTimeout(config.GRPC.ConnectionTimeout),
	)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(healthService, grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	listener, err := net.Listen("tcp", ":"+config.GRPC.Port)
	if err != nil {
		log.Fatalf("Failed to listen on port %s: %v", config.GRPC.Port, err)
	}
	go func() {
		log.Infof("Health service listening on port %s", config.GRPC.Port)
		if err := grpcServer.Serve(listener); err != nil {
			log.Fatalf("Failed to serve health service: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Gateway...")
	healthServer.SetServingStatus(healthService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	grpcServer.GracefulStop()

	log.Info("Gateway stopped")
}
