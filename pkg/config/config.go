// Package config loads entropy's TOML configuration and keeps a live copy of it.
//
// Configuration is read from ~/.entropy/config.toml (or an explicit path), then
// environment variables override individual fields:
//
//   - OPENAI_API_KEY: provider credential (required by the relay)
//   - ENTROPY_LISTEN: relay listen address
//   - ENTROPY_MODEL: provider model identifier
//   - ENTROPY_PROVIDER_URL: provider base URL
//   - ENTROPY_DB: transcript SQLite path
//   - ENTROPY_RELAY_URL: relay URL used by the terminal
//   - ENTROPY_WALLET_KEYFILE: keyfile used by !connect
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultListenAddr     = ":8080"
	DefaultModel          = "gpt-3.5-turbo"
	DefaultProviderURL    = "https://api.openai.com/v1"
	DefaultRelayURL       = "http://localhost:8080"
	DefaultDexScreenerURL = "https://api.dexscreener.com"
	DefaultMemoryLolURL   = "https://api.memory.lol"
	DefaultTimeoutSeconds = 300
)

// Config is the full entropy configuration.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Provider    ProviderConfig    `toml:"provider"`
	Transcripts TranscriptsConfig `toml:"transcripts"`
	Terminal    TerminalConfig    `toml:"terminal"`
	Lookups     LookupsConfig     `toml:"lookups"`
}

// ServerConfig configures the relay's HTTP server.
type ServerConfig struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string `toml:"listen_addr"`
}

// ProviderConfig configures the chat completion provider.
type ProviderConfig struct {
	// APIKey is the provider credential. Prefer OPENAI_API_KEY over the file.
	APIKey string `toml:"api_key"`

	// BaseURL of an OpenAI-compatible API
	BaseURL string `toml:"base_url"`

	// Model identifier sent with every request
	Model string `toml:"model"`

	// TimeoutSeconds bounds the wait for the provider to start responding.
	// An open stream is not cut off by it.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration.
func (p ProviderConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// TranscriptsConfig configures transcript recording.
type TranscriptsConfig struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database, or empty for in-memory storage.
	DBPath string `toml:"db_path"`
}

// TerminalConfig configures the interactive terminal.
type TerminalConfig struct {
	RelayURL      string `toml:"relay_url"`
	WalletKeyfile string `toml:"wallet_keyfile"`
}

// LookupsConfig points the command collaborators at their APIs.
type LookupsConfig struct {
	DexScreenerURL string `toml:"dexscreener_url"`
	MemoryLolURL   string `toml:"memory_lol_url"`
}

// Default returns the built-in configuration.
func Default() *Config {
	keyfile := ""
	if home, err := os.UserHomeDir(); err == nil {
		keyfile = filepath.Join(home, ".config", "solana", "id.json")
	}

	return &Config{
		Server: ServerConfig{ListenAddr: DefaultListenAddr},
		Provider: ProviderConfig{
			BaseURL:        DefaultProviderURL,
			Model:          DefaultModel,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Terminal: TerminalConfig{
			RelayURL:      DefaultRelayURL,
			WalletKeyfile: keyfile,
		},
		Lookups: LookupsConfig{
			DexScreenerURL: DefaultDexScreenerURL,
			MemoryLolURL:   DefaultMemoryLolURL,
		},
	}
}

// DefaultPath returns ~/.entropy/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}
	return filepath.Join(home, ".entropy", "config.toml"), nil
}

// Load reads the config file at path on top of the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// ApplyEnvOverrides overwrites fields from the environment.
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Provider.APIKey = key
	}
	if addr := os.Getenv("ENTROPY_LISTEN"); addr != "" {
		c.Server.ListenAddr = addr
	}
	if model := os.Getenv("ENTROPY_MODEL"); model != "" {
		c.Provider.Model = model
	}
	if url := os.Getenv("ENTROPY_PROVIDER_URL"); url != "" {
		c.Provider.BaseURL = url
	}
	if db := os.Getenv("ENTROPY_DB"); db != "" {
		c.Transcripts.DBPath = db
	}
	if url := os.Getenv("ENTROPY_RELAY_URL"); url != "" {
		c.Terminal.RelayURL = url
	}
	if keyfile := os.Getenv("ENTROPY_WALLET_KEYFILE"); keyfile != "" {
		c.Terminal.WalletKeyfile = keyfile
	}
}
