package providers

import (
	"context"
	"errors"

	"github.com/clinaid/medassist/internal/domain/entities"
)

// Provider fault taxonomy. The router recovers from the first two exactly
// once via the fallback backend; the third is terminal.
var (
	// ErrProviderUnavailable covers network failures, timeouts and non-2xx
	// responses from a backend.
	ErrProviderUnavailable = errors.New("text generation provider unavailable")

	// ErrProviderResponseMalformed covers a decodable transport whose payload
	// is unusable. Treated as a retryable provider fault.
	ErrProviderResponseMalformed = errors.New("text generation response malformed")

	// ErrAllProvidersUnavailable means both primary and fallback backends
	// failed for one call.
	ErrAllProvidersUnavailable = errors.New("all text generation providers unavailable")
)

// TextGenerationProvider is the uniform capability interface over one
// generative-text backend (or a router of several).
type TextGenerationProvider interface {
	// Name identifies the backend for provenance.
	Name() string

	// Generate sends one compiled prompt and returns the raw response text
	// with provenance.
	Generate(ctx context.Context, prompt *entities.CompiledPrompt) (*entities.ProviderResponse, error)

	// Probe is a cheap availability check using a minimal token budget.
	// Probe failures never affect in-flight Generate calls.
	Probe(ctx context.Context) bool
}
