package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"shieldpool/internal/app"
	"shieldpool/internal/config"
	"shieldpool/internal/router"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := config.LoadConfig(*configPath); err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to load configuration")
	}
	cfg := config.AppConfig

	container, err := app.NewContainer(cfg, logger)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to initialize services")
	}
	defer container.Close()

	engine := router.Setup(container, logger)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.WithField("addr", addr).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithField("error", err.Error()).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithField("error", err.Error()).Error("Forced shutdown")
	}
}
