package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr     = ":8080"
	defaultDatabaseURL  = "museum.db"
	defaultSlotCapacity = "30"
	defaultPartyLimit   = "30"
	defaultTokenTTL     = "24h"
	defaultQRSecret     = "change-me-qr-secret"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	// SlotCapacity is the admission ceiling per (date, window) pair; the same
	// constant applies to every window.
	SlotCapacity int

	// PartyLimit is the structural ceiling on declared visitors per booking,
	// independent of slot capacity.
	PartyLimit int

	TokenTTL time.Duration
	QRSecret string

	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	// .env is optional; real env always wins.
	_ = godotenv.Load()

	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = getEnv("HTTP_ADDR", defaultHTTPAddr)
	cfg.DatabaseURL = getEnv("DATABASE_URL", defaultDatabaseURL)
	cfg.QRSecret = getEnv("QR_SECRET", defaultQRSecret)

	var err error
	cfg.SlotCapacity, err = parseIntEnv("SLOT_CAPACITY", defaultSlotCapacity)
	if err != nil {
		return nil, err
	}
	cfg.PartyLimit, err = parseIntEnv("BOOKING_PARTY_LIMIT", defaultPartyLimit)
	if err != nil {
		return nil, err
	}
	cfg.TokenTTL, err = parseDurationEnv("TOKEN_TTL", defaultTokenTTL)
	if err != nil {
		return nil, err
	}

	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	if cfg.AppEnv == "prod" && cfg.QRSecret == defaultQRSecret {
		return nil, fmt.Errorf("QR_SECRET must be set outside dev")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key, def string) (int, error) {
	raw := getEnv(key, def)
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}
