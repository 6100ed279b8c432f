package config

import (
	"log"     // Standard log package
	"os"      // Package to interact with the OS, including environment variables
	"strconv" // For parsing numeric environment variables

	"github.com/joho/godotenv" // Package to load .env files
)

// Config holds all configuration for the application.
// Values are read from environment variables.
type Config struct {
	ServerPort string

	// PostgreSQL connection settings
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis settings (rate limiter backend)
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Media store (Supabase storage) settings
	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseBucket         string

	JWTSecret string // Signing key for access tokens

	// Rate limiter budget for the registration endpoint
	RateLimitPoints     int // allowed attempts per window
	RateLimitWindowSecs int // window length in seconds
	RateLimitBlockSecs  int // block length once the budget is exhausted
}

// LoadConfig reads configuration from environment variables.
// It loads a .env file first if it exists. A missing signing key or
// media-store credential is fatal here, at startup, never per-request.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file. Ignore error if it doesn't exist.
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "5000"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "paediprime"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseBucket:         getEnv("SUPABASE_BUCKET", "pfps"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		RateLimitPoints:     getEnvInt("RATE_LIMIT_POINTS", 5),
		RateLimitWindowSecs: getEnvInt("RATE_LIMIT_WINDOW_SECS", 300),
		RateLimitBlockSecs:  getEnvInt("RATE_LIMIT_BLOCK_SECS", 600),
	}

	// The registration flow cannot run without a signing key or media-store
	// credentials, so their absence kills the process before it serves.
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set; refusing to start")
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceRoleKey == "" {
		log.Fatal("SUPABASE_URL / SUPABASE_SERVICE_ROLE_KEY are not set; refusing to start")
	}

	log.Println("Configuration loaded successfully")
	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable or returns a default value.
func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Environment variable %s is not a number (%q), using fallback %d", key, value, fallback)
		return fallback
	}
	return n
}
