package config

import (
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	HTTPPort        string
	TokenExpiration time.Duration
	EncryptionKey   []byte // raw key bytes (32 for AES-256)

	// Completion backend (OpenAI-compatible).
	CompletionBaseURL string
	CompletionAPIKey  string
	CompletionModel   string

	// Assistant behavior.
	HistoryWindow int // bounded prior-turn window sent with each completion
	TitleMaxLen   int // hard character cap for derived conversation titles
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
		// Don't fail if .env is not present, might be in production
	}

	port := getEnv("HTTP_PORT", "8080")
	jwtSecret := getEnv("JWT_SECRET", "default-super-secret-key") // CHANGE THIS IN PRODUCTION!
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set.")
	}

	tokenExpHours := getEnvInt("JWT_EXPIRATION_HOURS", 24)

	// Load and decode the Encryption Key (MUST be 64 hex characters for 32 bytes)
	encryptionKeyHex := getEnv("ENCRYPTION_KEY", "")
	if encryptionKeyHex == "" {
		log.Fatal("FATAL: ENCRYPTION_KEY environment variable is not set.")
	}
	encryptionKeyBytes, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		log.Fatalf("FATAL: Failed to decode ENCRYPTION_KEY from hex: %v", err)
	}
	if len(encryptionKeyBytes) != 32 {
		log.Fatalf("FATAL: ENCRYPTION_KEY must be 32 bytes (64 hex characters) long, got %d bytes", len(encryptionKeyBytes))
	}

	cfg := &Config{
		HTTPPort:          port,
		JWTSecret:         jwtSecret,
		DatabaseURL:       dbURL,
		TokenExpiration:   time.Hour * time.Duration(tokenExpHours),
		EncryptionKey:     encryptionKeyBytes,
		CompletionBaseURL: getEnv("COMPLETION_BASE_URL", "https://api.openai.com"),
		CompletionAPIKey:  getEnv("COMPLETION_API_KEY", ""),
		CompletionModel:   getEnv("COMPLETION_MODEL", "gpt-4o-mini"),
		HistoryWindow:     getEnvInt("ASSIST_HISTORY_WINDOW", 6),
		TitleMaxLen:       getEnvInt("ASSIST_TITLE_MAX", 48),
	}

	log.Printf("Loaded config: Port=%s, DB_URL=***, TokenExp=%s, CompletionBase=%s, Model=%s, HistoryWindow=%d",
		cfg.HTTPPort, cfg.TokenExpiration, cfg.CompletionBaseURL, cfg.CompletionModel, cfg.HistoryWindow)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Env variable %s not set, using default: %s", key, fallback)
	return fallback
}

// getEnvInt retrieves an integer environment variable or returns a default.
func getEnvInt(key string, fallback int) int {
	raw := getEnv(key, strconv.Itoa(fallback))
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s', using default %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return n
}
