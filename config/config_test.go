package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"decentpay/codec"
)

func testContractAddress() string {
	var payload [32]byte
	payload[0] = 0xEC
	return codec.FormatStrkey(0x10, payload)
}

func TestLoadParsesFullConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contract := testContractAddress()
	contents := fmt.Sprintf(`RPCEndpoint = "https://rpc.example.org"
RPCAuthToken = "secret"
ContractAddress = "%s"
NetworkName = "mainnet"
RequestTimeoutSeconds = 45
RateLimitPerSecond = 12.5
RateLimitBurst = 25
PollIntervalSeconds = 2
MaxPollAttempts = 60
DiscoveryUpperBound = 500000

[gateway]
ListenAddress = ":9090"
ReadTimeoutSeconds = 20
WriteTimeoutSeconds = 20

[logging]
Level = "debug"
Format = "text"
`, contract)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.RPCEndpoint != "https://rpc.example.org" || cfg.RPCAuthToken != "secret" {
		t.Fatalf("unexpected endpoint settings: %+v", cfg)
	}
	if cfg.ContractAddress != contract {
		t.Fatalf("unexpected contract: %s", cfg.ContractAddress)
	}
	if cfg.NetworkName != "mainnet" {
		t.Fatalf("unexpected network name: %s", cfg.NetworkName)
	}
	if cfg.RequestTimeoutSeconds != 45 {
		t.Fatalf("unexpected request timeout: %d", cfg.RequestTimeoutSeconds)
	}
	if cfg.RateLimitPerSecond != 12.5 || cfg.RateLimitBurst != 25 {
		t.Fatalf("unexpected rate limit: %f/%d", cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	}
	if cfg.PollIntervalSeconds != 2 || cfg.MaxPollAttempts != 60 {
		t.Fatalf("unexpected poll settings: %d/%d", cfg.PollIntervalSeconds, cfg.MaxPollAttempts)
	}
	if cfg.DiscoveryUpperBound != 500000 {
		t.Fatalf("unexpected discovery upper bound: %d", cfg.DiscoveryUpperBound)
	}
	if cfg.Gateway.ListenAddress != ":9090" {
		t.Fatalf("unexpected gateway listen address: %s", cfg.Gateway.ListenAddress)
	}
	if cfg.Gateway.ReadTimeoutSeconds != 20 || cfg.Gateway.WriteTimeoutSeconds != 20 {
		t.Fatalf("unexpected gateway timeouts: %+v", cfg.Gateway)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging settings: %+v", cfg.Logging)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `RPCEndpoint = "http://localhost:8000"`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.NetworkName != "testnet" {
		t.Fatalf("unexpected default network: %s", cfg.NetworkName)
	}
	if cfg.RequestTimeoutSeconds != 30 {
		t.Fatalf("unexpected default request timeout: %d", cfg.RequestTimeoutSeconds)
	}
	if cfg.PollIntervalSeconds != 1 || cfg.MaxPollAttempts != 30 {
		t.Fatalf("unexpected default poll settings: %d/%d", cfg.PollIntervalSeconds, cfg.MaxPollAttempts)
	}
	if cfg.DiscoveryUpperBound != 1_000_000 {
		t.Fatalf("unexpected default discovery bound: %d", cfg.DiscoveryUpperBound)
	}
	if cfg.Gateway.ListenAddress != ":8080" {
		t.Fatalf("unexpected default gateway address: %s", cfg.Gateway.ListenAddress)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected default logging: %+v", cfg.Logging)
	}
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RPCEndpoint == "" {
		t.Fatalf("expected a default endpoint")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}

	// Loading again reads the file that was just written.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if again.RPCEndpoint != cfg.RPCEndpoint {
		t.Fatalf("reloaded endpoint differs: %s vs %s", again.RPCEndpoint, cfg.RPCEndpoint)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `RPCEndpoint = "http://localhost:8000"
ValidatorKey = "deadbeef"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg := &Config{RPCEndpoint: "http://localhost:8000"}
		applyDefaults(cfg)
		return cfg
	}

	cfg := base()
	cfg.RPCEndpoint = " "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing endpoint to be rejected")
	}

	cfg = base()
	cfg.ContractAddress = "not-a-strkey"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected malformed contract address to be rejected")
	}

	cfg = base()
	var payload [32]byte
	cfg.ContractAddress = codec.FormatStrkey(0x30, payload) // account, not contract
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected account address to be rejected as contract")
	}

	cfg = base()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown log level to be rejected")
	}
}
