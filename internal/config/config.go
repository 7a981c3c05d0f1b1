// Package config loads indexer configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Defaults applied when the environment leaves a value unset.
const (
	DefaultRPCURL      = "https://api.mainnet-beta.solana.com"
	DefaultProgramID   = "62NbBCCxPfR83xtgw3AaxKGHyyDdxobrcCGzA7s7LFie"
	DefaultServerHost  = "0.0.0.0"
	DefaultServerPort  = 5000
	DefaultMetricsAddr = ":9090"
)

// Config holds the full indexer configuration.
type Config struct {
	DatabaseURL string
	RPCURL      string
	WSURL       string
	ProgramID   string
	ServerHost  string
	ServerPort  int
	MetricsAddr string

	// StartSlot seeds the watermark on startup. Nil means derive it from
	// the highest stored slot.
	StartSlot *int64
}

// ListenAddr returns the host:port the query API binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Load reads configuration from the environment, applying defaults and
// validating required values. A .env file in the working directory is loaded
// first without overriding variables already set.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RPCURL:      envOr("SOLANA_RPC_URL", DefaultRPCURL),
		WSURL:       os.Getenv("SOLANA_WS_URL"),
		ProgramID:   envOr("PROGRAM_ID", DefaultProgramID),
		ServerHost:  envOr("SERVER_HOST", DefaultServerHost),
		MetricsAddr: DefaultMetricsAddr,
	}

	// Explicitly set to empty disables the metrics listener
	if v, ok := os.LookupEnv("METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	if cfg.WSURL == "" {
		ws, err := deriveWSURL(cfg.RPCURL)
		if err != nil {
			return nil, err
		}
		cfg.WSURL = ws
	}

	if err := validateProgramID(cfg.ProgramID); err != nil {
		return nil, fmt.Errorf("PROGRAM_ID: %w", err)
	}

	port := envOr("SERVER_PORT", strconv.Itoa(DefaultServerPort))
	p, err := strconv.Atoi(port)
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("SERVER_PORT: invalid port %q", port)
	}
	cfg.ServerPort = p

	if raw := os.Getenv("START_SLOT"); raw != "" {
		slot, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || slot < 0 {
			return nil, fmt.Errorf("START_SLOT: invalid slot %q", raw)
		}
		cfg.StartSlot = &slot
	}

	return cfg, nil
}

// deriveWSURL maps an HTTP RPC endpoint onto its WebSocket counterpart.
func deriveWSURL(rpcURL string) (string, error) {
	switch {
	case strings.HasPrefix(rpcURL, "https://"):
		return "wss://" + strings.TrimPrefix(rpcURL, "https://"), nil
	case strings.HasPrefix(rpcURL, "http://"):
		return "ws://" + strings.TrimPrefix(rpcURL, "http://"), nil
	default:
		return "", fmt.Errorf("SOLANA_RPC_URL: cannot derive WebSocket URL from %q", rpcURL)
	}
}

// validateProgramID checks that the program ID is a base58-encoded ed25519
// point. Program addresses live on the curve; a typo almost never does.
func validateProgramID(programID string) error {
	raw, err := base58.Decode(programID)
	if err != nil {
		return fmt.Errorf("invalid base58: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("decoded to %d bytes, want 32", len(raw))
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return fmt.Errorf("not a valid ed25519 point")
	}
	return nil
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
