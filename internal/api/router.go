package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"workdesk-backend/internal/config"
	"workdesk-backend/internal/handlers"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	AuthHandler         *handlers.AuthHandler
	ConversationHandler *handlers.ConversationHandler
	AssistantHandler    *handlers.AssistantHandler
	CredentialsHandler  *handlers.CredentialsHandler
	ChannelHandler      *handlers.ChannelHandler
	SettingsHandler     *handlers.SettingsHandler
	SlackWebhookHandler *handlers.SlackWebhookHandlers
	Config              *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Request timeout applies to the whole surface except where a handler
	// deliberately waits on the completion backend, which is given headroom.
	r.Use(middleware.Timeout(120 * time.Second))

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "https://*.vercel.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Public Routes (No JWT Required) ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/v1/auth", func(r chi.Router) {
		if deps.AuthHandler == nil {
			panic("AuthHandler dependency is nil in router setup")
		}
		r.Post("/signup", deps.AuthHandler.HandleSignup)
		r.Post("/login", deps.AuthHandler.HandleLogin)
	})

	// --- Public Slack Event Webhook ---
	// Public so Slack can deliver events (including URL verification);
	// signature verification inside the handler secures it.
	if deps.SlackWebhookHandler != nil {
		r.Route("/slack-events", func(r chi.Router) {
			r.Post("/{channelID}", deps.SlackWebhookHandler.HandleSlackEvent)
		})
	} else {
		log.Println("WARN: SlackWebhookHandler dependency is nil, skipping /slack-events routes.")
	}

	// --- Authenticated Routes (JWT Required) ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(JwtAuthMiddleware(deps.Config.JWTSecret))

		// --- Mount Conversation Routes ---
		if deps.ConversationHandler != nil {
			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", deps.ConversationHandler.HandleListConversations)
				r.Post("/", deps.ConversationHandler.HandleCreateConversation)
				r.Post("/active", deps.ConversationHandler.HandleGetActiveConversation)
				r.Get("/{conversationID}", deps.ConversationHandler.HandleGetConversation)
				r.Patch("/{conversationID}", deps.ConversationHandler.HandleUpdateConversation)
				r.Delete("/{conversationID}", deps.ConversationHandler.HandleDeleteConversation)
				r.Get("/{conversationID}/messages", deps.ConversationHandler.HandleListMessages)
				r.Post("/{conversationID}/messages", deps.ConversationHandler.HandleCreateMessage)
			})
		} else {
			log.Println("WARN: ConversationHandler dependency is nil, skipping /v1/conversations routes.")
		}

		// --- Mount Assistant Routes ---
		if deps.AssistantHandler != nil {
			r.Route("/assist", func(r chi.Router) {
				r.Post("/send", deps.AssistantHandler.HandleSend)
				r.Post("/resolve", deps.AssistantHandler.HandleResolve)
				r.Post("/switch", deps.AssistantHandler.HandleSwitch)
				r.Get("/transcript", deps.AssistantHandler.HandleTranscript)
				r.Post("/render", deps.AssistantHandler.HandleRender)
				r.Post("/conversations", deps.AssistantHandler.HandleNewConversation)
				r.Delete("/conversations/{conversationID}", deps.AssistantHandler.HandleDeleteConversation)
			})
		} else {
			log.Println("WARN: AssistantHandler dependency is nil, skipping /v1/assist routes.")
		}

		// --- Mount Credentials Routes ---
		if deps.CredentialsHandler != nil {
			r.Route("/credentials", func(r chi.Router) {
				r.Post("/", deps.CredentialsHandler.HandleCreateCredential)
				r.Get("/", deps.CredentialsHandler.HandleListCredentials)
				r.Get("/{credentialID}", deps.CredentialsHandler.HandleGetCredential)
				r.Delete("/{credentialID}", deps.CredentialsHandler.HandleDeleteCredential)
				r.Post("/{credentialID}/test", deps.CredentialsHandler.HandleTestCredential)
			})
		} else {
			log.Println("WARN: CredentialsHandler dependency is nil, skipping /v1/credentials routes.")
		}

		// --- Mount Channel Routes ---
		if deps.ChannelHandler != nil {
			r.Route("/channels", func(r chi.Router) {
				r.Post("/", deps.ChannelHandler.HandleCreateChannel)
				r.Get("/", deps.ChannelHandler.HandleListChannels)
				r.Get("/{channelID}", deps.ChannelHandler.HandleGetChannel)
				r.Delete("/{channelID}", deps.ChannelHandler.HandleDeleteChannel)
			})
		} else {
			log.Println("WARN: ChannelHandler dependency is nil, skipping /v1/channels routes.")
		}

		// --- Mount Assistant Settings Routes ---
		if deps.SettingsHandler != nil {
			r.Route("/assistant-settings", func(r chi.Router) {
				r.Get("/", deps.SettingsHandler.HandleGetSettings)
				r.Put("/", deps.SettingsHandler.HandleUpdateSettings)
			})
		} else {
			log.Println("WARN: SettingsHandler dependency is nil, skipping /v1/assistant-settings routes.")
		}
	})

	return r
}
