package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultHTTPAddr     = ":8080"
	defaultStoreDriver  = "sqlite"
	defaultSQLitePath   = "ledgerbook.db"
	defaultJWTSecret    = "dev-insecure-secret-change"
	defaultIdleTimeout  = 30 * time.Minute
	defaultStoreTimeout = 10 * time.Second
)

type Config struct {
	HTTPAddr     string
	StoreDriver  string // "sqlite" or "postgres"
	SQLitePath   string
	DatabaseDSN  string
	JWTSecret    string
	IdleTimeout  time.Duration // 0 disables auto logout
	StoreTimeout time.Duration
}

func Load() (Config, error) {
	driver := strings.ToLower(envOr("STORE_DRIVER", defaultStoreDriver))
	if driver != "sqlite" && driver != "postgres" {
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q", driver)
	}

	idle, err := durationEnv("IDLE_TIMEOUT", defaultIdleTimeout)
	if err != nil {
		return Config{}, err
	}
	storeTimeout, err := durationEnv("STORE_TIMEOUT", defaultStoreTimeout)
	if err != nil {
		return Config{}, err
	}

	dsn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if driver == "postgres" && dsn == "" {
		return Config{}, fmt.Errorf("DATABASE_DSN is required when STORE_DRIVER=postgres")
	}

	return Config{
		HTTPAddr:     envOr("HTTP_ADDR", defaultHTTPAddr),
		StoreDriver:  driver,
		SQLitePath:   envOr("SQLITE_PATH", defaultSQLitePath),
		DatabaseDSN:  NormalizeConnectionString(dsn),
		JWTSecret:    envOr("JWT_SECRET", defaultJWTSecret),
		IdleTimeout:  idle,
		StoreTimeout: storeTimeout,
	}, nil
}

func envOr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	if v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

// NormalizeConnectionString turns a "Host=..;Port=..;Database=.." style string into
// a libpq keyword/value DSN. URLs and strings that are already libpq style pass through.
func NormalizeConnectionString(raw string) string {
	if raw == "" || strings.Contains(raw, "://") || !strings.Contains(raw, ";") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
