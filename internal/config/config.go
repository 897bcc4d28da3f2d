package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

const (
	defaultHTTPAddr            = ":8080"
	defaultDatabaseURL         = "crm.db"
	defaultStoreBackend        = StoreSQL
	defaultMongoDatabase       = "crm"
	defaultMongoTimeout        = "20s"
	defaultJWTSecret           = "change-me-jwt-secret"
	defaultJWTTTL              = "24h"
	defaultProfileFetchTimeout = "5s"
	defaultLeadTransitions     = TransitionsStrict
	defaultShutdownTimeout     = "10s"
)

// Store backends.
const (
	StoreSQL   = "sql"
	StoreMongo = "mongo"
)

// Lead transition policies.
const (
	TransitionsStrict = "strict"
	TransitionsOpen   = "open"
)

// Lookup resolves a configuration key. os.Getenv satisfies it.
type Lookup func(key string) string

type Config struct {
	AppEnv              string
	HTTPAddr            string
	DatabaseURL         string
	StoreBackend        string
	MongoURI            string
	MongoDatabase       string
	MongoTimeout        time.Duration
	JWTSecret           string
	JWTTTL              time.Duration
	ProfileFetchTimeout time.Duration
	LeadTransitions     string
	CORSAllowedOrigins  []string
	ShutdownTimeout     time.Duration
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through lookup and validates it.
func LoadFrom(lookup Lookup) (*Config, error) {
	r := reader{lookup: lookup}
	cfg := &Config{}

	appEnv := strings.TrimSpace(r.get("APP_ENV", ""))
	if appEnv == "" {
		appEnv = strings.TrimSpace(r.get("ENV", "dev"))
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(r.get("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(r.get("DATABASE_URL", defaultDatabaseURL))
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(r.get("STORE_BACKEND", defaultStoreBackend)))
	cfg.MongoURI = strings.TrimSpace(r.get("MONGODB_URI", ""))
	cfg.MongoDatabase = strings.TrimSpace(r.get("MONGODB_DATABASE", defaultMongoDatabase))
	cfg.JWTSecret = strings.TrimSpace(r.get("JWT_SECRET", defaultJWTSecret))
	cfg.LeadTransitions = strings.ToLower(strings.TrimSpace(r.get("LEAD_TRANSITIONS", defaultLeadTransitions)))
	cfg.CORSAllowedOrigins = splitList(r.get("CORS_ALLOWED_ORIGINS", ""))

	var err error
	if cfg.MongoTimeout, err = r.duration("MONGO_TIMEOUT", defaultMongoTimeout); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = r.duration("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.ProfileFetchTimeout, err = r.duration("PROFILE_FETCH_TIMEOUT", defaultProfileFetchTimeout); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = r.duration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s store=%s lead_transitions=%s addr=%s", cfg.AppEnv, cfg.StoreBackend, cfg.LeadTransitions, cfg.HTTPAddr)

	return cfg, nil
}

// StrictTransitions reports whether lead transitions are guarded by the state machine.
func (c *Config) StrictTransitions() bool {
	return c.LeadTransitions == TransitionsStrict
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.ProfileFetchTimeout <= 0 {
		return fmt.Errorf("PROFILE_FETCH_TIMEOUT must be > 0")
	}
	if cfg.MongoTimeout <= 0 {
		return fmt.Errorf("MONGO_TIMEOUT must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}

	switch cfg.StoreBackend {
	case StoreSQL:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must not be empty")
		}
	case StoreMongo:
		if cfg.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_BACKEND=mongo")
		}
		if cfg.MongoDatabase == "" {
			return fmt.Errorf("MONGODB_DATABASE must not be empty")
		}
		// users, profiles and revoked tokens always live in SQL
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must not be empty")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: sql, mongo")
	}

	if cfg.LeadTransitions != TransitionsStrict && cfg.LeadTransitions != TransitionsOpen {
		return fmt.Errorf("LEAD_TRANSITIONS must be one of: strict, open")
	}

	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

type reader struct {
	lookup Lookup
}

func (r reader) get(name, fallback string) string {
	if r.lookup == nil {
		return fallback
	}
	if v := r.lookup(name); v != "" {
		return v
	}
	return fallback
}

func (r reader) duration(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(r.get(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}
