package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Network != "localnet" {
		t.Errorf("network = %s", cfg.Network)
	}
	if cfg.Token.Decimals != 9 {
		t.Errorf("decimals = %d, want 9", cfg.Token.Decimals)
	}
	if cfg.Token.LayoutVersion != 1 {
		t.Errorf("layout version = %d, want 1", cfg.Token.LayoutVersion)
	}
	if cfg.Audit.Backend != "sqlite" {
		t.Errorf("audit backend = %s", cfg.Audit.Backend)
	}
	if _, err := cfg.ActiveNetwork(); err != nil {
		t.Errorf("default localnet unresolvable: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	doc := `network: testnet
networks:
  testnet:
    rpc: http://testnet.example:9000
    timeout: 45s
signer:
  address: "0xoperator"
  keyEnv: TOKENOPS_SIGNER_KEY
  gasObject: "0xgas1"
attacker:
  address: "0xattacker"
  keyEnv: TOKENOPS_ATTACKER_KEY
token:
  packageId: "0xpkg"
  module: managed_token
  coinType: "0xpkg::managed_token::TOKEN"
  decimals: 6
  maxSupply: 1000000000000
  layoutVersion: 1
manifest: /etc/tokenops/deployment.yaml
harness:
  delay: 5s
audit:
  backend: postgres
  postgresDsn: postgres://audit@db/tokenops
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Network != "testnet" {
		t.Errorf("network = %s", cfg.Network)
	}
	net, err := cfg.ActiveNetwork()
	if err != nil {
		t.Fatalf("ActiveNetwork: %v", err)
	}
	if net.RPC != "http://testnet.example:9000" {
		t.Errorf("rpc = %s", net.RPC)
	}
	if net.Timeout != "45s" {
		t.Errorf("timeout = %s", net.Timeout)
	}
	if cfg.Signer.Address != "0xoperator" {
		t.Errorf("signer = %s", cfg.Signer.Address)
	}
	// Key material is referenced by environment variable name only.
	if cfg.Signer.KeyEnv != "TOKENOPS_SIGNER_KEY" {
		t.Errorf("keyEnv = %s", cfg.Signer.KeyEnv)
	}
	if cfg.Token.Decimals != 6 {
		t.Errorf("decimals = %d", cfg.Token.Decimals)
	}
	if cfg.Token.MaxSupply != 1_000_000_000_000 {
		t.Errorf("maxSupply = %d", cfg.Token.MaxSupply)
	}
	if cfg.ManifestPath != "/etc/tokenops/deployment.yaml" {
		t.Errorf("manifest = %s", cfg.ManifestPath)
	}
	if cfg.Harness.Delay != "5s" {
		t.Errorf("harness delay = %s", cfg.Harness.Delay)
	}
	if cfg.Audit.Backend != "postgres" {
		t.Errorf("audit backend = %s", cfg.Audit.Backend)
	}
}

func TestActiveNetworkUnknown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network = "nonexistent"
	if _, err := cfg.ActiveNetwork(); err == nil {
		t.Error("unknown network must error, not silently default")
	}
}

func TestActiveNetworkMissingRPC(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Networks["broken"] = NetworkConfig{}
	cfg.Network = "broken"
	if _, err := cfg.ActiveNetwork(); err == nil {
		t.Error("network without an rpc endpoint must error")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("networks: ["), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed config must error")
	}
}
