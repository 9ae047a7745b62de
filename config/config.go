package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "default_secret_CHANGE_ME"

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	JWTSecret     string
	AllowedOrigin string
	// Sessions
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration
	// Customer search
	SearchDebounce  time.Duration
	SearchMinLength int
	SearchTimeout   time.Duration
	SearchCacheTTL  time.Duration
	LookupLatency   time.Duration
	// Business Rules
	MaxCartQuantity int
	// Rate limiting (per client IP)
	RateLimitRPS   float64
	RateLimitBurst int
	// Server
	ShutdownTimeout time.Duration
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: .env for local dev, system env vars otherwise.
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}
	return cfg
}

// FromEnv builds a Config from the process environment without loading any file.
func FromEnv() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:4200"),

		// Sessions: 2h lifetime, expired ones swept every minute
		SessionTTL:             getDurationEnv("SESSION_TTL", 2*time.Hour),
		SessionCleanupInterval: getDurationEnv("SESSION_CLEANUP_INTERVAL", time.Minute),

		// Search: 400ms debounce, 3 chars minimum, mock directory answers in 500ms
		SearchDebounce:  getDurationEnv("SEARCH_DEBOUNCE", 400*time.Millisecond),
		SearchMinLength: getIntEnv("SEARCH_MIN_LENGTH", 3),
		SearchTimeout:   getDurationEnv("SEARCH_TIMEOUT", 5*time.Second),
		SearchCacheTTL:  getDurationEnv("SEARCH_CACHE_TTL", time.Minute),
		LookupLatency:   getDurationEnv("LOOKUP_LATENCY", 500*time.Millisecond),

		MaxCartQuantity: getIntEnv("MAX_CART_QUANTITY", 1000),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

func (c *Config) Validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.SearchDebounce <= 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must be positive")
	}
	if c.SearchMinLength < 1 {
		return fmt.Errorf("SEARCH_MIN_LENGTH must be at least 1")
	}
	if c.MaxCartQuantity < 1 {
		return fmt.Errorf("MAX_CART_QUANTITY must be at least 1")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.JWTSecret == defaultJWTSecret {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}
