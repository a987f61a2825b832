package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinaid/medassist/internal/domain/entities"
	"github.com/clinaid/medassist/internal/domain/providers"
)

type fakeProvider struct {
	name  string
	resp  *entities.ProviderResponse
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, prompt *entities.CompiledPrompt) (*entities.ProviderResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeProvider) Probe(ctx context.Context) bool { return f.err == nil }

func prompt() *entities.CompiledPrompt {
	return &entities.CompiledPrompt{Text: "prompt", Temperature: 0.3, MaxOutputTokens: 1024}
}

func TestGenerate_PrimarySuccessSkipsFallback(t *testing.T) {
	primary := &fakeProvider{name: "gemini", resp: &entities.ProviderResponse{Text: "answer", Provider: "gemini"}}
	fallback := &fakeProvider{name: "huggingface", resp: &entities.ProviderResponse{Text: "other", Provider: "huggingface"}}

	router := NewRouterWithProviders(primary, fallback, true)

	resp, err := router.Generate(context.Background(), prompt())

	require.NoError(t, err)
	assert.Equal(t, "gemini", resp.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestGenerate_RetryableFaultFallsBackOnce(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: providers.ErrProviderUnavailable}
	fallback := &fakeProvider{name: "huggingface", resp: &entities.ProviderResponse{Text: "answer", Provider: "huggingface"}}

	router := NewRouterWithProviders(primary, fallback, true)

	resp, err := router.Generate(context.Background(), prompt())

	require.NoError(t, err)
	// Provenance names the backend that actually answered.
	assert.Equal(t, "huggingface", resp.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestGenerate_MalformedResponseIsRetryable(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: providers.ErrProviderResponseMalformed}
	fallback := &fakeProvider{name: "huggingface", resp: &entities.ProviderResponse{Text: "answer", Provider: "huggingface"}}

	router := NewRouterWithProviders(primary, fallback, true)

	resp, err := router.Generate(context.Background(), prompt())

	require.NoError(t, err)
	assert.Equal(t, "huggingface", resp.Provider)
}

func TestGenerate_BothFailWrapsAllProvidersUnavailable(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: providers.ErrProviderUnavailable}
	fallback := &fakeProvider{name: "huggingface", err: providers.ErrProviderUnavailable}

	router := NewRouterWithProviders(primary, fallback, true)

	_, err := router.Generate(context.Background(), prompt())

	require.Error(t, err)
	assert.True(t, errors.Is(err, providers.ErrAllProvidersUnavailable))
	assert.Contains(t, err.Error(), "gemini")
	assert.Contains(t, err.Error(), "huggingface")
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestGenerate_FallbackDisabled(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: providers.ErrProviderUnavailable}
	fallback := &fakeProvider{name: "huggingface", resp: &entities.ProviderResponse{Text: "answer"}}

	router := NewRouterWithProviders(primary, fallback, false)

	_, err := router.Generate(context.Background(), prompt())

	require.Error(t, err)
	assert.Equal(t, 0, fallback.calls)
}

func TestGenerate_NonRetryableFaultDoesNotFallBack(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: errors.New("prompt rejected")}
	fallback := &fakeProvider{name: "huggingface", resp: &entities.ProviderResponse{Text: "answer"}}

	router := NewRouterWithProviders(primary, fallback, true)

	_, err := router.Generate(context.Background(), prompt())

	require.Error(t, err)
	assert.False(t, errors.Is(err, providers.ErrAllProvidersUnavailable))
	assert.Equal(t, 0, fallback.calls)
}

func TestGenerate_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: providers.ErrProviderUnavailable}

	router := NewRouterWithProviders(primary, nil, false)

	for i := 0; i < 3; i++ {
		_, err := router.Generate(context.Background(), prompt())
		require.Error(t, err)
	}
	assert.Equal(t, 3, primary.calls)

	// Breaker is open now: the backend is no longer called.
	_, err := router.Generate(context.Background(), prompt())
	require.Error(t, err)
	assert.Equal(t, 3, primary.calls)
}

func TestSupported(t *testing.T) {
	assert.Equal(t, []string{"gemini", "huggingface"}, Supported())
}
