package config

import (
	"os"
	"time"
)

// Config carries every runtime setting. Values come from the environment
// with sane local-development defaults; godotenv loads .env before this runs.
type Config struct {
	Port        string
	DatabaseDSN string

	JWTSecret string
	JWTExpiry time.Duration

	GeminiAPIKey string
	GeminiModel  string
	OCRAPIKey    string

	AMQPURL        string
	OrderQueueName string
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseDSN: getEnv("DB_DSN", "root:password@tcp(127.0.0.1:3306)/medscan?parseTime=true"),

		JWTSecret: getEnv("JWT_SECRET", "dev-only-secret-change-me"),
		JWTExpiry: getEnvDuration("JWT_EXPIRY", 72*time.Hour),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		OCRAPIKey:    getEnv("OCR_API_KEY", ""),

		AMQPURL:        getEnv("AMQP_URL", ""),
		OrderQueueName: getEnv("ORDER_QUEUE_NAME", "order_events"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
