package common

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// KnownProvider is operator-maintained metadata about one provider account.
type KnownProvider struct {
	Name  string `yaml:"name"`
	Notes string `yaml:"notes,omitempty"`
}

// ProviderSafety configures the NAT-hairpin guard: services routed through
// the SSL proxy must not land on the proxy's own provider, because the proxy
// cannot reach its provider's public ingress from inside that network.
type ProviderSafety struct {
	// ProxyProvider is the account currently hosting the SSL proxy.
	ProxyProvider string `yaml:"proxy_provider"`

	// ProxyProviderName is the display name for the proxy provider.
	ProxyProviderName string `yaml:"proxy_provider_name,omitempty"`

	// KnownProviders maps provider accounts to operator notes.
	KnownProviders map[string]KnownProvider `yaml:"known_providers,omitempty"`
}

// Config is the agent configuration file.
type Config struct {
	// ChainRESTEndpoint is the chain node's REST (gRPC-gateway) address.
	ChainRESTEndpoint string `yaml:"chain_rest_endpoint"`

	// SignerEndpoint is the transaction signing sidecar address.
	SignerEndpoint string `yaml:"signer_endpoint"`

	// Mnemonic is read from MnemonicEnv at load time, never from the file.
	Mnemonic    string `yaml:"-"`
	MnemonicEnv string `yaml:"mnemonic_env,omitempty"`

	// IdentityDir is where TLS identities are persisted, one file per
	// account address.
	IdentityDir string `yaml:"identity_dir,omitempty"`

	// ListenAddr is the tool dispatch server address for `serve`.
	ListenAddr string `yaml:"listen_addr,omitempty"`

	ProviderSafety ProviderSafety `yaml:"provider_safety,omitempty"`
}

const defaultMnemonicEnv = "AGENT_MNEMONIC"

// LoadConfig reads and validates a YAML configuration file. The mnemonic is
// sourced from the environment variable named by mnemonic_env (default
// AGENT_MNEMONIC); secrets never live in the file itself.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	if cfg.ChainRESTEndpoint == "" {
		return nil, fmt.Errorf("config %s: chain_rest_endpoint is required", path)
	}
	if cfg.SignerEndpoint == "" {
		return nil, fmt.Errorf("config %s: signer_endpoint is required", path)
	}

	if cfg.MnemonicEnv == "" {
		cfg.MnemonicEnv = defaultMnemonicEnv
	}
	cfg.Mnemonic = os.Getenv(cfg.MnemonicEnv)

	if cfg.IdentityDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not resolve home directory: %w", err)
		}
		cfg.IdentityDir = filepath.Join(home, ".akash-agent", "certificates")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:8745"
	}

	return &cfg, nil
}
