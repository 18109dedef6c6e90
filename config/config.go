// Package config loads the TOML configuration shared by the CLI and the
// gateway service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"decentpay/codec"
)

// Config is the on-disk configuration. Every field has a usable default so a
// fresh deployment only needs the contract address filled in.
type Config struct {
	// RPCEndpoint is the JSON-RPC URL of the ledger node.
	RPCEndpoint string `toml:"RPCEndpoint"`
	// RPCAuthToken is sent as a bearer token when non-empty.
	RPCAuthToken string `toml:"RPCAuthToken"`
	// ContractAddress is the deployed escrow contract.
	ContractAddress string `toml:"ContractAddress"`
	// NetworkName labels log lines and metrics; it has no wire effect.
	NetworkName string `toml:"NetworkName"`

	// RequestTimeoutSeconds bounds each RPC round trip.
	RequestTimeoutSeconds int `toml:"RequestTimeoutSeconds"`
	// RateLimitPerSecond throttles outbound RPC calls; zero disables it.
	RateLimitPerSecond float64 `toml:"RateLimitPerSecond"`
	// RateLimitBurst is the throttle's burst allowance.
	RateLimitBurst int `toml:"RateLimitBurst"`

	// PollIntervalSeconds is the pause between confirmation polls.
	PollIntervalSeconds int `toml:"PollIntervalSeconds"`
	// MaxPollAttempts bounds confirmation polling per submission.
	MaxPollAttempts int `toml:"MaxPollAttempts"`

	// DiscoveryUpperBound caps the ID range probed when searching for the
	// highest allocated escrow.
	DiscoveryUpperBound uint32 `toml:"DiscoveryUpperBound"`

	Gateway GatewayConfig `toml:"gateway"`
	Logging LoggingConfig `toml:"logging"`
}

// GatewayConfig configures the read-only HTTP facade.
type GatewayConfig struct {
	ListenAddress string `toml:"ListenAddress"`
	// ReadTimeoutSeconds and WriteTimeoutSeconds guard slow clients.
	ReadTimeoutSeconds  int `toml:"ReadTimeoutSeconds"`
	WriteTimeoutSeconds int `toml:"WriteTimeoutSeconds"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `toml:"Level"`
	Format string `toml:"Format"`
}

// Load reads the configuration from path, writing a commented default file
// when none exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	for _, undecoded := range meta.Undecoded() {
		return nil, fmt.Errorf("config file %s has unknown field %s", path, strings.Join(undecoded, "."))
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot possibly work.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCEndpoint) == "" {
		return fmt.Errorf("config: RPCEndpoint is required")
	}
	if c.ContractAddress != "" {
		if err := codec.ValidateAddress(c.ContractAddress); err != nil {
			return fmt.Errorf("config: ContractAddress: %w", err)
		}
		if !codec.IsContractAddress(c.ContractAddress) {
			return fmt.Errorf("config: ContractAddress %q is an account, not a contract", c.ContractAddress)
		}
	}
	if c.RateLimitPerSecond < 0 {
		return fmt.Errorf("config: RateLimitPerSecond must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Logging.Format)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "testnet"
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = 30
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 10
	}
	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = 1
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = 30
	}
	if cfg.DiscoveryUpperBound == 0 {
		cfg.DiscoveryUpperBound = 1_000_000
	}
	if cfg.Gateway.ListenAddress == "" {
		cfg.Gateway.ListenAddress = ":8080"
	}
	if cfg.Gateway.ReadTimeoutSeconds <= 0 {
		cfg.Gateway.ReadTimeoutSeconds = 15
	}
	if cfg.Gateway.WriteTimeoutSeconds <= 0 {
		cfg.Gateway.WriteTimeoutSeconds = 15
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// createDefault writes and returns a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCEndpoint: "http://localhost:8000",
		NetworkName: "testnet",
	}
	applyDefaults(cfg)
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
