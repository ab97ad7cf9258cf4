// cmd/devserver/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/devserver"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg)
	logger.Infof("Starting %s devserver v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	srv := devserver.NewServer(cfg, logger)

	api := &http.Server{
		Addr:         ":" + cfg.DevServer.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	processor := &http.Server{
		Addr:         ":" + cfg.DevServer.ProcessorPort,
		Handler:      srv.ProcessorHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start both servers in goroutines
	go func() {
		logger.Infof("Commerce API listening on :%s", cfg.DevServer.Port)
		if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Commerce API server failed: %v", err)
		}
	}()
	go func() {
		logger.Infof("Card processor listening on :%s", cfg.DevServer.ProcessorPort)
		if err := processor.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Processor server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := api.Shutdown(ctx); err != nil {
		logger.Errorf("Failed to shutdown commerce API gracefully: %v", err)
	}
	if err := processor.Shutdown(ctx); err != nil {
		logger.Errorf("Failed to shutdown processor gracefully: %v", err)
	}

	logger.Info("Server shutdown completed")
}
