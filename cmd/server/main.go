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

	"github.com/jackc/pgx/v5/pgxpool"

	"workdesk-backend/internal/api"
	"workdesk-backend/internal/completion"
	"workdesk-backend/internal/config"
	"workdesk-backend/internal/crypto"
	"workdesk-backend/internal/handlers"
	"workdesk-backend/internal/integrations"
	"workdesk-backend/internal/models"
	"workdesk-backend/internal/services"
	"workdesk-backend/internal/store/postgres"
)

func main() {
	log.Println("Starting WorkDesk Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize Database Connection Pool
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Unable to create database connection pool: %v\n", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(dbCtx); err != nil {
		log.Fatalf("FATAL: Unable to ping database: %v\n", err)
	}
	log.Println("Database connection pool established and pinged successfully.")

	// 3. Initialize Dependencies (Store, Services, Handlers)
	pgStore := postgres.NewPostgresStore(dbpool)
	log.Println("Postgres store initialized.")

	aead, err := crypto.NewAESGCM(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("FATAL: Failed to create AES-GCM cipher: %v", err)
	}
	log.Println("AES-GCM cipher initialized.")

	// --- Initialize Integration Registry ---
	intRegistry := integrations.NewRegistry()
	intRegistry.Register(string(models.ServiceTypeSlack), integrations.NewSlackIntegration())
	intRegistry.Register(string(models.ServiceTypeOpenAI), integrations.NewOpenAIIntegration(cfg.CompletionBaseURL))
	log.Println("IntegrationRegistry initialized and populated.")

	// --- Initialize Completion Client ---
	completionClient := completion.NewHTTPClient(cfg.CompletionBaseURL, cfg.CompletionAPIKey, cfg.CompletionModel)
	log.Println("Completion client initialized.")

	// --- Initialize Services ---
	authService := services.NewAuthService(pgStore, cfg)
	log.Println("AuthService initialized.")
	credentialService := services.NewCredentialsService(pgStore, aead, intRegistry)
	log.Println("CredentialsService initialized.")
	conversationsService := services.NewConversationsService(pgStore)
	log.Println("ConversationsService initialized.")
	channelsService := services.NewChannelsService(pgStore, intRegistry)
	log.Println("ChannelsService initialized.")
	settingsService := services.NewSettingsService(pgStore)
	log.Println("SettingsService initialized.")
	assistantService := services.NewAssistantService(pgStore, completionClient, services.LogNotifier{}, cfg)
	log.Println("AssistantService initialized.")

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	credentialHandler := handlers.NewCredentialsHandler(credentialService)
	conversationHandler := handlers.NewConversationHandler(conversationsService)
	assistantHandler := handlers.NewAssistantHandler(assistantService)
	channelHandler := handlers.NewChannelHandler(channelsService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	slackWebhookHandler := handlers.NewSlackWebhookHandlers(channelsService, credentialService, assistantService)
	log.Println("Handlers initialized.")

	// 4. Setup Router & Inject Dependencies
	routerDeps := api.RouterDependencies{
		AuthHandler:         authHandler,
		ConversationHandler: conversationHandler,
		AssistantHandler:    assistantHandler,
		CredentialsHandler:  credentialHandler,
		ChannelHandler:      channelHandler,
		SettingsHandler:     settingsHandler,
		SlackWebhookHandler: slackWebhookHandler,
		Config:              cfg,
	}
	router := api.NewRouter(routerDeps)
	log.Println("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// WriteTimeout must outlast the completion call, which has no
		// timeout of its own.
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
		log.Fatal("Forcing shutdown due to error.")
	}

	log.Println("Server shutdown complete.")
}
