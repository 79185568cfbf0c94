// Package config loads runtime configuration from environment
// variables. A .env file is read by the entrypoint before Load runs,
// so local development and container deployments use the same keys.
package config

import (
    "log"
    "os"
    "strconv"
    "time"
)

// Config holds all runtime configuration values. Each field
// corresponds to one environment variable. Missing required values
// abort startup; a booking service with a half-applied configuration
// is worse than one that refuses to boot.
type Config struct {
    Env                string        // application environment (e.g. "dev", "prod")
    Port               string        // HTTP port to listen on
    DBUser             string        // database username
    DBPass             string        // database password (optional)
    DBHost             string        // database host address
    DBPort             string        // database port number
    DBName             string        // database name
    JWTSecret          string        // secret used to verify JWTs
    HoldTTL            time.Duration // how long a seat hold survives without a commit
    PaymentTimeout     time.Duration // upper bound on one payment authorization call
    ConfirmationPrefix string        // carrier prefix on booking references
}

// Load reads configuration from environment variables. Required
// variables are enforced by must(); missing values cause the program
// to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:                must("APP_ENV"),
        Port:               must("APP_PORT"),
        DBUser:             must("DB_USER"),
        DBPass:             os.Getenv("DB_PASS"),
        DBHost:             must("DB_HOST"),
        DBPort:             must("DB_PORT"),
        DBName:             must("DB_NAME"),
        JWTSecret:          must("JWT_SECRET"),
        HoldTTL:            envDur("SEAT_HOLD_TTL", 5*time.Minute),
        PaymentTimeout:     envDur("PAYMENT_TIMEOUT", 10*time.Second),
        ConfirmationPrefix: envStr("CONFIRMATION_PREFIX", "AV"),
    }
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    switch v {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
        return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}
