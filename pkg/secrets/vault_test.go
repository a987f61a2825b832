package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyVaultSecretsDisabled(t *testing.T) {
	result, err := ApplyVaultSecrets(context.Background(), VaultConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, result.Enabled)
	assert.Zero(t, result.Loaded)
}

func TestApplyVaultSecretsIncompleteConfig(t *testing.T) {
	_, err := ApplyVaultSecrets(context.Background(), VaultConfig{Enabled: true, Addr: "http://vault"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault configuration incomplete")
}

func TestApplyVaultSecretsKVv2(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/secret/data/medassist/api", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Vault-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"GEMINI_API_KEY":"vault-gemini","HF_API_KEY":"vault-hf"}}}`))
	}))
	defer server.Close()

	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("HF_API_KEY", "")

	result, err := ApplyVaultSecrets(context.Background(), VaultConfig{
		Enabled:   true,
		Addr:      server.URL,
		Token:     "test-token",
		Mount:     "secret",
		Path:      "medassist/api",
		KVVersion: 2,
		Timeout:   2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Loaded)
	assert.Equal(t, "vault-gemini", os.Getenv("GEMINI_API_KEY"))
	assert.Equal(t, "vault-hf", os.Getenv("HF_API_KEY"))
}

func TestApplyVaultSecretsSkipsSetEnvWithoutOverwrite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"data":{"DB_PASSWORD":"from-vault"}}}`))
	}))
	defer server.Close()

	t.Setenv("DB_PASSWORD", "from-env")

	result, err := ApplyVaultSecrets(context.Background(), VaultConfig{
		Enabled:   true,
		Addr:      server.URL,
		Token:     "test-token",
		Mount:     "secret",
		Path:      "medassist/api",
		KVVersion: 2,
		Timeout:   2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Loaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "from-env", os.Getenv("DB_PASSWORD"))
}

func TestApplyVaultSecretsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "permission denied", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := ApplyVaultSecrets(context.Background(), VaultConfig{
		Enabled:   true,
		Addr:      server.URL,
		Token:     "bad-token",
		Mount:     "secret",
		Path:      "medassist/api",
		KVVersion: 2,
		Timeout:   2 * time.Second,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault fetch failed")
}

func TestLoadVaultConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "true")
	t.Setenv("VAULT_ADDR", "http://vault:8200")
	t.Setenv("VAULT_TOKEN", "tok")
	t.Setenv("VAULT_MOUNT", "")
	t.Setenv("VAULT_PATH", "")

	cfg := LoadVaultConfigFromEnv("medassist/api")
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "secret", cfg.Mount)
	assert.Equal(t, "medassist/api", cfg.Path)
	assert.Equal(t, 2, cfg.KVVersion)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.False(t, cfg.Overwrite)
}
