package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
chain_rest_endpoint: https://rest.example.com:1317
signer_endpoint: http://127.0.0.1:9000
identity_dir: /var/lib/agent/identities
listen_addr: 127.0.0.1:9999
provider_safety:
  proxy_provider: akash1proxy
  proxy_provider_name: ProxyHost
  known_providers:
    akash1proxy:
      name: ProxyHost
      notes: hosts the SSL proxy
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://rest.example.com:1317", cfg.ChainRESTEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.SignerEndpoint)
	assert.Equal(t, "/var/lib/agent/identities", cfg.IdentityDir)
	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, "akash1proxy", cfg.ProviderSafety.ProxyProvider)
	require.Contains(t, cfg.ProviderSafety.KnownProviders, "akash1proxy")
	assert.Equal(t, "ProxyHost", cfg.ProviderSafety.KnownProviders["akash1proxy"].Name)
}

func TestLoadConfigRequiresEndpoints(t *testing.T) {
	path := writeConfig(t, `signer_endpoint: http://127.0.0.1:9000`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain_rest_endpoint")

	path = writeConfig(t, `chain_rest_endpoint: https://rest.example.com`)
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signer_endpoint")
}

func TestLoadConfigMnemonicFromEnvironment(t *testing.T) {
	path := writeConfig(t, `
chain_rest_endpoint: https://rest.example.com
signer_endpoint: http://127.0.0.1:9000
mnemonic_env: TEST_AGENT_MNEMONIC
`)

	t.Setenv("TEST_AGENT_MNEMONIC", "word1 word2 word3")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "word1 word2 word3", cfg.Mnemonic)
}

func TestLoadConfigMnemonicNeverReadFromFile(t *testing.T) {
	path := writeConfig(t, `
chain_rest_endpoint: https://rest.example.com
signer_endpoint: http://127.0.0.1:9000
mnemonic: leaked words in a config file
`)

	t.Setenv("AGENT_MNEMONIC", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.NotEqual(t, "leaked words in a config file", cfg.Mnemonic)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
chain_rest_endpoint: https://rest.example.com
signer_endpoint: http://127.0.0.1:9000
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8745", cfg.ListenAddr)
	assert.Contains(t, cfg.IdentityDir, ".akash-agent")
	assert.Equal(t, "AGENT_MNEMONIC", cfg.MnemonicEnv)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
