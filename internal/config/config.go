package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"brokerage/internal/domain"
)

type Config struct {
	Port      string
	DBDSN     string
	LogFile   string
	JWTSecret string

	SessionTTL    time.Duration
	MaxImageBytes int
	BodyLimit     int
	RatePerMinute int
	LoginRate     int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	WhatsAppDomain string
	SiteFile       string
	Site           *domain.SiteSettings

	RetryAttempts int
	RetryBackoff  time.Duration
}

// Load reads .env when present, then the process environment. Malformed
// numbers fall back to their defaults; a missing or broken SITE_FILE is an
// error because the operator asked for it explicitly.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DBDSN:          getEnv("DB_DSN", "brokerage.db"), // sqlite file in working dir
		LogFile:        getEnv("LOG_FILE", "./brokerage.log"),
		JWTSecret:      getEnv("JWT_SECRET", "change-me"),
		SessionTTL:     time.Duration(getInt("SESSION_TTL_MINUTES", 120)) * time.Minute,
		MaxImageBytes:  getInt("MAX_IMAGE_MB", 2) << 20,
		BodyLimit:      getInt("BODY_LIMIT_MB", 40) << 20,
		RatePerMinute:  getInt("RATE_LIMIT_PER_MINUTE", 300),
		LoginRate:      getInt("LOGIN_RATE_LIMIT", 10),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getInt("REDIS_DB", 0),
		CacheTTL:       time.Duration(getInt("CACHE_TTL_SECONDS", 30)) * time.Second,
		WhatsAppDomain: getEnv("WHATSAPP_DOMAIN", "https://wa.me"),
		SiteFile:       os.Getenv("SITE_FILE"),
		RetryAttempts:  getInt("RETRY_ATTEMPTS", 3),
		RetryBackoff:   time.Duration(getInt("RETRY_BACKOFF_MS", 50)) * time.Millisecond,
	}
	if cfg.SiteFile != "" {
		site, err := LoadSite(cfg.SiteFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Site = &site
	}

	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s REDIS_ADDR=%q SITE_FILE=%q",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.RedisAddr, cfg.SiteFile)
	return cfg, nil
}

// LoadSite reads the seller profile used to seed settings on first start.
func LoadSite(path string) (domain.SiteSettings, error) {
	var s domain.SiteSettings
	b, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read site file: %w", err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("parse site file %s: %w", path, err)
	}
	return s, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("[config] ignoring %s=%q, using %d", key, v, def)
		return def
	}
	return n
}
