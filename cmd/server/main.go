package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/stridehq/challenge-api/internal/auth"
	"github.com/stridehq/challenge-api/internal/config"
	"github.com/stridehq/challenge-api/internal/database"
	"github.com/stridehq/challenge-api/internal/engine"
	"github.com/stridehq/challenge-api/internal/handlers"
	"github.com/stridehq/challenge-api/internal/notifier"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Initialize Discord notifier
	var n notifier.Notifier
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Printf("Discord notifier not initialized: %v", err)
		} else {
			n = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
		}
	}

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	eng := engine.New(db)
	activityHandler := handlers.NewActivityHandler(db, eng, n, authHandler)
	challengeHandler := handlers.NewChallengeHandler(db, authHandler)
	importHandler := handlers.NewImportHandler(db, eng, n, authHandler)
	adminHandler := handlers.NewAdminHandler(db, eng, n, authHandler)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, authHandler, activityHandler, challengeHandler, importHandler, adminHandler)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
