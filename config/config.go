package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the service configuration, loaded from the environment.
type Config struct {
	Port          string
	MongoURI      string
	DBName        string
	JWTSecret     string
	PostmarkToken string
	EmailSender   string
	ClientURL     string
	LogLevel      string
	LogFormat     string // json or console
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Load reads .env when present and builds the configuration.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	return &Config{
		Port:          getEnv("PORT", "8000"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:        getEnv("DB_NAME", "urbancart"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		PostmarkToken: getEnv("POSTMARK_API_TOKEN", ""),
		EmailSender:   getEnv("EMAIL_SENDER", ""),
		ClientURL:     getEnv("CLIENT_URL", "*"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
	}
}
