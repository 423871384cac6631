package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tendant/simple-site/internal/logging"
	"github.com/tendant/simple-site/internal/metrics"
	"github.com/tendant/simple-site/pkg/simplesite"
	"github.com/tendant/simple-site/pkg/simplesite/api"
	"github.com/tendant/simple-site/pkg/simplesite/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		fmt.Println(config.Usage())
		return
	}

	// Load configuration from .env and the environment
	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	logger, err := logging.New(serverConfig.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, serverConfig, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, serverConfig *config.ServerConfig, logger *zap.Logger) error {
	m := metrics.New()

	svc, cleanup, err := serverConfig.BuildService(ctx,
		simplesite.WithLogger(logger),
		simplesite.WithPublishObserver(m),
	)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}
	defer cleanup()

	handler := api.NewHandler(svc, api.WithLogger(logger), api.WithMetrics(m))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           NewRouter(handler.Routes(), m.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("site builder starting",
			zap.String("port", serverConfig.Port),
			zap.String("environment", serverConfig.Environment),
			zap.String("repository", serverConfig.Repository),
			zap.String("storage", serverConfig.Storage))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
