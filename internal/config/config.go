package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the app reads from the environment.
type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	LogLevel    string

	// Payment gateway settings.
	GatewayURL      string
	MerchantID      string
	GatewaySecret   string
	CallbackBaseURL string

	// Pause between a verified callback and the order being marked paid.
	// The storefront shows the buyer a confirmation screen for a few
	// seconds before completing; the server default is no delay.
	ConfirmDelay time.Duration
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Load reads configuration from a .env file (if present) and the process
// environment. Missing optional values fall back to defaults; required
// values are checked by the caller at startup.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	confirmDelay := time.Duration(0)
	if raw := os.Getenv("PAYMENT_CONFIRM_DELAY"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
			confirmDelay = d
		} else {
			log.Printf("warning: invalid PAYMENT_CONFIRM_DELAY %q, using 0", raw)
		}
	}

	return Config{
		Addr:            getEnv("STOREFRONT_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		GatewayURL:      getEnv("EASYPAISA_API_URL", ""),
		MerchantID:      getEnv("EASYPAISA_MERCHANT_ID", ""),
		GatewaySecret:   getEnv("EASYPAISA_SECRET_KEY", ""),
		CallbackBaseURL: getEnv("PAYMENT_CALLBACK_BASE_URL", "http://localhost:8080"),
		ConfirmDelay:    confirmDelay,
	}
}
