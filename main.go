package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/MariaBraganca/immobyte/internal/api"
	"github.com/MariaBraganca/immobyte/internal/assistant"
	"github.com/MariaBraganca/immobyte/internal/auth"
	"github.com/MariaBraganca/immobyte/internal/config"
	"github.com/MariaBraganca/immobyte/internal/domain"
	"github.com/MariaBraganca/immobyte/internal/store"
	"github.com/MariaBraganca/immobyte/internal/ws"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting immobyte service...")
	log.Printf("Listen address: %s", cfg.Addr)

	// Initialize store
	st, err := store.NewSQLiteStore(cfg.SQLiteDSN)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	// Initialize OpenAI client and chat session factory
	openaiClient := assistant.NewClient(cfg.OpenAIAPIKey)
	chatOpts := assistant.Options{
		Name:         cfg.AssistantName,
		Model:        cfg.AssistantModel,
		Instructions: cfg.AssistantInstructions,
		Poll: assistant.PollSettings{
			MaxRetries:   cfg.MaxRetries,
			BaseInterval: cfg.BaseInterval,
			Multiplier:   cfg.BackoffMultiplier,
			Cap:          cfg.BackoffCap,
		},
	}
	factory := func(ctx context.Context, user domain.User) (ws.Session, error) {
		return assistant.NewChat(ctx, openaiClient, user, chatOpts)
	}

	// Initialize authenticator and WebSocket relay
	authenticator := auth.NewTokenAuthenticator(cfg.AuthTokens, st)
	relay := ws.NewServer(cfg, authenticator, factory)

	// Initialize HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/ws/chat", relay.HandleChat)
	api.NewHandler(st).Register(e)

	// Start server
	go func() {
		if err := e.Start(cfg.Addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.Addr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Service stopped")
}
