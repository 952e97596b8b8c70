package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultProgramID is the hello-world program deployed on devnet.
const DefaultProgramID = "J2b5oRTv2xtd1fgUVWgmQHbcaAFQdvMLPXNcUu8bcLqM"

// ErrMissingPrivateKey is returned when PRIVATE_KEY is not set.
var ErrMissingPrivateKey = errors.New("PRIVATE_KEY is required")

// ClusterRPCURLs are the public RPC endpoints per cluster.
var ClusterRPCURLs = map[string]string{
	"devnet":       "https://api.devnet.solana.com",
	"testnet":      "https://api.testnet.solana.com",
	"mainnet-beta": "https://api.mainnet-beta.solana.com",
	"localnet":     "http://localhost:8899",
}

// Config holds all application configuration loaded from environment variables.
// Values are read once at startup and passed explicitly to the components that need them.
type Config struct {
	// Key material (base-58 encoded secret key)
	PrivateKey string

	// Solana configuration
	Cluster    string
	RPCURL     string
	Commitment string
	ProgramID  string

	LogLevel string

	// Optional integrations, disabled when empty
	NATSURL        string
	PushgatewayURL string
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads configuration using getenv as the lookup function and validates it.
// Returns an error if any required configuration is missing or invalid.
// PRIVATE_KEY is optional here; see RequirePrivateKey.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		PrivateKey:     getenv("PRIVATE_KEY"),
		Cluster:        getEnvOrDefault(getenv, "SOLANA_CLUSTER", "devnet"),
		Commitment:     getEnvOrDefault(getenv, "COMMITMENT", "confirmed"),
		ProgramID:      getEnvOrDefault(getenv, "PROGRAM_ID", DefaultProgramID),
		LogLevel:       getEnvOrDefault(getenv, "LOG_LEVEL", "info"),
		NATSURL:        getenv("NATS_URL"),
		PushgatewayURL: getenv("PUSHGATEWAY_URL"),
	}

	cfg.RPCURL = getenv("RPC_URL")
	if cfg.RPCURL == "" {
		cfg.RPCURL = ClusterRPCURLs[cfg.Cluster]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.RPCURL == "" {
		if _, ok := ClusterRPCURLs[c.Cluster]; !ok {
			errs = append(errs, fmt.Errorf("unknown SOLANA_CLUSTER %q (set RPC_URL explicitly)", c.Cluster))
		} else {
			errs = append(errs, fmt.Errorf("RPC_URL is required"))
		}
	}

	switch strings.ToLower(c.Commitment) {
	case "processed", "confirmed", "finalized":
	default:
		errs = append(errs, fmt.Errorf("COMMITMENT must be one of processed, confirmed, finalized (got %q)", c.Commitment))
	}

	if c.ProgramID == "" {
		errs = append(errs, fmt.Errorf("PROGRAM_ID is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// RequirePrivateKey reports ErrMissingPrivateKey when no secret key is configured.
// Commands that sign call it before any connection is constructed.
func (c *Config) RequirePrivateKey() error {
	if c.PrivateKey == "" {
		return ErrMissingPrivateKey
	}
	return nil
}

// LoadDotEnv seeds the process environment from the given .env files.
// Variables already present in the environment are not overwritten.
// A missing file is not an error; any other read or parse failure is.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}
