// Package config provides configuration loading for the tokenops CLI and
// the sentinel harness runner. Key material is consumed as opaque seeds
// (environment variable names); storage and rotation live elsewhere.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	// Network is the active network name, a key of Networks.
	Network string `mapstructure:"network"`

	// Networks maps network names to node configuration.
	Networks map[string]NetworkConfig `mapstructure:"networks"`

	// Signer is the operator identity.
	Signer SignerConfig `mapstructure:"signer"`

	// Attacker is the adversarial identity used by the security harness.
	// Optional; harness scenarios needing it are skipped when absent.
	Attacker SignerConfig `mapstructure:"attacker"`

	// Token identifies the deployed token package.
	Token TokenConfig `mapstructure:"token"`

	// ManifestPath points at the deployment manifest, consulted
	// read-only as a capability discovery fallback.
	ManifestPath string `mapstructure:"manifest"`

	// Harness configuration
	Harness HarnessConfig `mapstructure:"harness"`

	// Audit configuration
	Audit AuditConfig `mapstructure:"audit"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// NetworkConfig holds per-network node settings.
type NetworkConfig struct {
	RPC     string `mapstructure:"rpc"`
	Timeout string `mapstructure:"timeout"`
}

// SignerConfig identifies one signing identity. KeyEnv names the
// environment variable holding the key material; the value itself never
// appears in configuration files.
type SignerConfig struct {
	Address   string `mapstructure:"address"`
	KeyEnv    string `mapstructure:"keyEnv"`
	GasObject string `mapstructure:"gasObject"`
}

// TokenConfig identifies the deployed token package and its interface.
type TokenConfig struct {
	PackageID string `mapstructure:"packageId"`
	Module    string `mapstructure:"module"`
	CoinType  string `mapstructure:"coinType"`
	Decimals  int    `mapstructure:"decimals"`

	// MaxSupply is the supply cap in base units; zero means uncapped.
	MaxSupply uint64 `mapstructure:"maxSupply"`

	// LayoutVersion selects the call layout of the deployed interface.
	LayoutVersion int `mapstructure:"layoutVersion"`
}

// HarnessConfig holds security harness settings.
type HarnessConfig struct {
	// Delay is the inter-scenario delay, e.g. "2s".
	Delay string `mapstructure:"delay"`
}

// AuditConfig holds persistent operation log settings.
type AuditConfig struct {
	// Backend is "sqlite", "postgres", or "stdout".
	Backend string `mapstructure:"backend"`

	// SQLitePath is the local audit database file for the sqlite backend.
	SQLitePath string `mapstructure:"sqlitePath"`

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string `mapstructure:"postgresDsn"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Network: "localnet",
		Networks: map[string]NetworkConfig{
			"localnet": {RPC: "http://localhost:9000", Timeout: "30s"},
		},
		Token: TokenConfig{
			Module:        "managed_token",
			Decimals:      9,
			LayoutVersion: 1,
		},
		Harness: HarnessConfig{
			Delay: "2s",
		},
		Audit: AuditConfig{
			Backend:    "sqlite",
			SQLitePath: defaultAuditPath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from file and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".tokenops"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TOKENOPS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return &cfg, nil
}

// ActiveNetwork returns the configuration of the selected network.
func (c *Config) ActiveNetwork() (NetworkConfig, error) {
	nc, ok := c.Networks[c.Network]
	if !ok {
		return NetworkConfig{}, fmt.Errorf("unknown network %q (configured: %v)", c.Network, networkNames(c.Networks))
	}
	if nc.RPC == "" {
		return NetworkConfig{}, fmt.Errorf("network %q has no rpc endpoint configured", c.Network)
	}
	return nc, nil
}

func networkNames(m map[string]NetworkConfig) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names
}

func defaultAuditPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tokenops-audit.db"
	}
	return filepath.Join(home, ".tokenops", "audit.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("network", "localnet")
	v.SetDefault("networks.localnet.rpc", "http://localhost:9000")
	v.SetDefault("networks.localnet.timeout", "30s")
	v.SetDefault("token.module", "managed_token")
	v.SetDefault("token.decimals", 9)
	v.SetDefault("token.layoutVersion", 1)
	v.SetDefault("harness.delay", "2s")
	v.SetDefault("audit.backend", "sqlite")
	v.SetDefault("audit.sqlitePath", defaultAuditPath())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
