package config

import (
	"os"
	"strconv"
	"time"

	id "brique/pkg/domain"
)

// Server captures process level configuration for the ledger service.
type Server struct {
	Addr          string
	PlatformOwner id.Address
	AdminToken    string
	JWTSigningKey string

	// MinPurchase is the default minimum settlement value accepted by a
	// primary sale when no per-sale minimum is configured.
	MinPurchase uint64

	DatabaseURL string
	RedisURL    string

	KafkaBrokers string
	EventsTopic  string

	// VerificationCacheTTL bounds how long a cached identity verification
	// flag may be served before re-reading the registry.
	VerificationCacheTTL time.Duration

	// DevSeed populates the ledger with demo data on startup. Local use only.
	DevSeed bool
}

const (
	defaultAddr        = ":8080"
	defaultEventsTopic = "brique.ledger.events"
	defaultMinPurchase = 50_000_000 // 0.05 units at 9 decimals

	// Dev signing key - override JWT_SIGNING_KEY in production.
	devSigningKey = "dev-secret-key-change-in-production"
	devAdminToken = "demo-admin-token"
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:                 getEnv("BRIQUE_ADDR", defaultAddr),
		AdminToken:           getEnv("ADMIN_TOKEN", devAdminToken),
		JWTSigningKey:        getEnv("JWT_SIGNING_KEY", devSigningKey),
		MinPurchase:          getEnvUint("MIN_PURCHASE", defaultMinPurchase),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		KafkaBrokers:         os.Getenv("KAFKA_BROKERS"),
		EventsTopic:          getEnv("EVENTS_TOPIC", defaultEventsTopic),
		VerificationCacheTTL: getEnvDuration("VERIFICATION_CACHE_TTL", 5*time.Minute),
		DevSeed:              getEnvBool("DEV_SEED", false),
	}

	if owner, err := id.ParseAddress(os.Getenv("PLATFORM_OWNER")); err == nil {
		cfg.PlatformOwner = owner
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvUint(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
