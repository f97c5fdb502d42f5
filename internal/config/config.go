package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

type Config struct {
	ServerAddr string
	Env        string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string

	// RedisAddr is optional; empty disables the listing cache.
	RedisAddr string

	CORSAllowedOrigin string
	LogLevel          string
}

func Load() *Config {
	return &Config{
		ServerAddr:        getEnvOrDefault("SERVER_ADDR", ":8080"),
		Env:               getEnvOrDefault("ENV", "development"),
		DBHost:            getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:            getEnvOrDefault("DB_PORT", "5432"),
		DBUser:            getEnvOrDefault("DB_USER", "happyhour"),
		DBPassword:        getEnvOrDefault("DB_PASSWORD", "happyhour_dev_password"),
		DBName:            getEnvOrDefault("DB_NAME", "happyhour"),
		JWTSecret:         getEnvOrDefault("JWT_SECRET", generateDefaultSecret()),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		CORSAllowedOrigin: getEnvOrDefault("CORS_ALLOWED_ORIGIN", "http://localhost:5173"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

// IsProduction reports whether the server runs in production mode.
// Controls the Secure attribute of the auth cookie.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DatabaseURL returns the connection URL used by the migration tool.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func generateDefaultSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "dev-secret-change-in-production"
	}
	return hex.EncodeToString(bytes)
}
