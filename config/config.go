package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the API server.
type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	JWTSecret      string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Mail is disabled when PostmarkToken is empty
	PostmarkToken string
	EmailSender   string
}

// MailEnabled reports whether shopping lists can be sent by email.
func (c *Config) MailEnabled() bool {
	return c.PostmarkToken != "" && c.EmailSender != ""
}

// Load reads a .env file when present and then the environment.
func Load() (*Config, error) {
	// a missing .env is normal in containers
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET environment variable not set")
	}

	timeout := 5 * time.Second
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			// plain seconds are accepted too
			secs, convErr := strconv.Atoi(v)
			if convErr != nil {
				return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", v, err)
			}
			d = time.Duration(secs) * time.Second
		}
		if d <= 0 {
			return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", d)
		}
		timeout = d
	}

	return &Config{
		Port:           getenv("PORT", "8000"),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getenv("MONGO_DB", "foodgram"),
		JWTSecret:      secret,
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "json"),
		RequestTimeout: timeout,
		PostmarkToken:  os.Getenv("POSTMARK_API_TOKEN"),
		EmailSender:    os.Getenv("EMAIL_SENDER"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
