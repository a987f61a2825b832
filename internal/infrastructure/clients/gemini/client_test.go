package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinaid/medassist/internal/domain/entities"
	"github.com/clinaid/medassist/internal/domain/providers"
	"github.com/clinaid/medassist/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.ProviderConfig{
		APIKey:   "test-key",
		Model:    "gemini-test",
		Endpoint: server.URL,
	}, 5*time.Second, time.Second)
	require.NoError(t, err)
	return client
}

func testPrompt() *entities.CompiledPrompt {
	return &entities.CompiledPrompt{
		Text:            "prompt text",
		Temperature:     0.3,
		MaxOutputTokens: 1024,
		SafetyThreshold: "BLOCK_ONLY_HIGH",
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.ProviderConfig{}, time.Second, time.Second)
	assert.Error(t, err)
}

func TestGenerate_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-test:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"structured answer"}]},"finishReason":"STOP"}]}`))
	})

	resp, err := client.Generate(context.Background(), testPrompt())

	require.NoError(t, err)
	assert.Equal(t, "structured answer", resp.Text)
	assert.Equal(t, "gemini", resp.Provider)
	assert.Equal(t, "gemini-test", resp.Model)
	assert.Greater(t, resp.TokenEstimate, 0)
}

func TestGenerate_Non2xxIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Generate(context.Background(), testPrompt())

	require.Error(t, err)
	assert.True(t, errors.Is(err, providers.ErrProviderUnavailable))
}

func TestGenerate_UndecodableBodyIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	})

	_, err := client.Generate(context.Background(), testPrompt())

	require.Error(t, err)
	assert.True(t, errors.Is(err, providers.ErrProviderResponseMalformed))
}

func TestGenerate_EmptyCandidatesYieldsFallbackText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	resp, err := client.Generate(context.Background(), testPrompt())

	require.NoError(t, err)
	assert.Equal(t, emptyGenerationFallback, resp.Text)
}

func TestGenerate_BlockedPromptYieldsFallbackText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ignored"}]}}],"promptFeedback":{"blockReason":"SAFETY"}}`))
	})

	resp, err := client.Generate(context.Background(), testPrompt())

	require.NoError(t, err)
	assert.Equal(t, emptyGenerationFallback, resp.Text)
}

func TestProbe(t *testing.T) {
	healthy := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"pong"}]}}]}`))
	})
	assert.True(t, healthy.Probe(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	assert.False(t, down.Probe(context.Background()))
}
