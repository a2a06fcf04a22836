package app

import (
	"os"
	"strconv"
	"time"

	"github.com/lanewaylabs/gatehouse/pkg/jwtx"
)

type Config struct {
	Issuer         string // Required: issuer claim for tokens
	BootstrapToken string // Optional: token required to perform bootstrap

	SigningKeyFile    string // Optional: path to RSA private key PEM (empty = ephemeral key per start)
	SigningKeyID      string // Optional: kid published in the JWKS (default: primary)
	RSABits           int    // Optional: RSA key size when generating (default: 2048)
	RefreshSealSecret string // Optional: secret for sealing refresh tokens (empty = ephemeral per start)

	DatabaseFile string // Optional: path to SQLite database file (default: ./gatehouse.db)

	AccessTokenTTL  time.Duration // Access token lifetime (default: 1h)
	RefreshTokenTTL time.Duration // Refresh token lifetime (default: 30 days)
	AuthCodeTTL     time.Duration // Authorization code lifetime (default: 10m)

	PasswordGrantStorefront bool // Allow the password grant for storefront clients (default: true)
	PasswordGrantBackOffice bool // Allow the password grant for back office clients (default: true)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:            os.Getenv("GATEHOUSE_ISSUER"),
		SigningKeyFile:    os.Getenv("GATEHOUSE_SIGNING_KEY_FILE"),
		SigningKeyID:      getEnvOrDefault("GATEHOUSE_SIGNING_KEY_ID", "primary"),
		RSABits:           getEnvIntOrDefault("GATEHOUSE_RSA_BITS", 2048),
		RefreshSealSecret: os.Getenv("GATEHOUSE_REFRESH_SEAL_SECRET"),
		DatabaseFile:      getEnvOrDefault("GATEHOUSE_DATABASE_FILE", "gatehouse.db"),
		BootstrapToken: os.Getenv(
			"BOOTSTRAP_TOKEN",
		), // Optional: if set, required to perform bootstrap

		AccessTokenTTL:  getEnvDurationOrDefault("GATEHOUSE_ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvDurationOrDefault("GATEHOUSE_REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		AuthCodeTTL:     getEnvDurationOrDefault("GATEHOUSE_AUTH_CODE_TTL", jwtx.DefaultAuthCodeTTL),

		PasswordGrantStorefront: getEnvBoolOrDefault("GATEHOUSE_PASSWORD_GRANT_STOREFRONT", true),
		PasswordGrantBackOffice: getEnvBoolOrDefault("GATEHOUSE_PASSWORD_GRANT_BACK_OFFICE", true),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "http://localhost:8080" // Default issuer for local development
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
