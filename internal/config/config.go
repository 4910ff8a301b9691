package config

import (
	"fmt"
	"os"
	"strings"
)

// RoleSource selects where the access-control gate reads the caller's
// role from: the session token itself, or a fresh lookup against the
// users table on every request.
type RoleSource string

const (
	RoleSourceToken      RoleSource = "token"
	RoleSourceLiveLookup RoleSource = "live_lookup"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      []byte
	ResendAPIKey   string
	MailFrom       string
	BaseURL        string
	ClientURL      string
	CookieDomain   string
	AllowedOrigins []string
	RoleSource     RoleSource
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@shiftline.dev"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:3000"),
		ClientURL:    getEnv("CLIENT_URL", "http://localhost:5173"),
		CookieDomain: os.Getenv("DOMAIN"),
		RoleSource:   RoleSource(getEnv("ROLE_SOURCE", string(RoleSourceLiveLookup))),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	cfg.JWTSecret = []byte(secret)

	switch cfg.RoleSource {
	case RoleSourceToken, RoleSourceLiveLookup:
	default:
		return nil, fmt.Errorf("invalid ROLE_SOURCE %q, expected token or live_lookup", cfg.RoleSource)
	}

	cfg.AllowedOrigins = initAllowedOrigins(cfg.ClientURL)

	return cfg, nil
}

func getEnv(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func initAllowedOrigins(clientURL string) []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
