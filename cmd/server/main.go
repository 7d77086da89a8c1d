package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/shopeat/server/adapters/realtime"
	"github.com/shopeat/server/domain/entities"
	"github.com/shopeat/server/domain/repositories"
	"github.com/shopeat/server/internal/api"
	"github.com/shopeat/server/internal/config"
	"github.com/shopeat/server/internal/websocket"
	"github.com/shopeat/server/usecase"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Without an API key the server still runs, against the scripted model.
	var model repositories.RealtimeModel
	if err := cfg.RequireOpenAI(); err != nil {
		logger.Warn("OPENAI_API_KEY not set, using the scripted mock model", zap.Error(err))
		model = realtime.NewMockModel(logger)
	} else {
		model = realtime.NewClient(cfg.OpenAIAPIKey, logger,
			realtime.WithBaseURL(cfg.RealtimeURL),
			realtime.WithModel(cfg.Model),
		)
	}

	assistant := usecase.NewAssistant(entities.NewList(), logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	hub := websocket.NewHub(model, assistant, cfg, logger)
	go hub.Run()

	api.InitRoutes(e, hub, assistant, cfg, logger)

	go func() {
		if err := e.Start(cfg.Address()); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("ShopEAT server started",
		zap.String("address", cfg.Address()),
		zap.String("model", cfg.Model),
		zap.String("voice", cfg.Voice))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
