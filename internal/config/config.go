package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	Port int

	GestionBaseURL string
	HTTPTimeout    time.Duration

	// Inbound sender ids look like "whatsapp:+573188216823". The transport
	// prefix and the country code are stripped before anything else sees them.
	TransportPrefix string
	CountryCode     string

	// Optional Redis-backed session store. Empty means in-memory sessions.
	RedisURL   string
	SessionTTL time.Duration

	// Optional directory with yaml overrides for reply templates.
	MsgTemplateDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:            3000,
		HTTPTimeout:     10 * time.Second,
		TransportPrefix: "whatsapp:",
		CountryCode:     "57",
		SessionTTL:      24 * time.Hour,
	}

	cfg.GestionBaseURL = strings.TrimSpace(os.Getenv("GESTION_API_BASE_URL"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.MsgTemplateDir = strings.TrimSpace(os.Getenv("MSG_TEMPLATE_DIR"))

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("TRANSPORT_PREFIX")); v != "" {
		cfg.TransportPrefix = v
	}
	if v := strings.TrimSpace(os.Getenv("COUNTRY_CODE")); v != "" {
		cfg.CountryCode = v
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeout = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_TTL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTL = time.Duration(n) * time.Second
		}
	}

	if cfg.GestionBaseURL == "" {
		return nil, errors.New("GESTION_API_BASE_URL is required")
	}

	return cfg, nil
}
