package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/clinaid/medassist/internal/domain/entities"
	"github.com/clinaid/medassist/internal/domain/providers"
	"github.com/clinaid/medassist/pkg/config"
)

// Router implements TextGenerationProvider over a primary and an optional
// fallback backend. A retryable fault on the primary is retried exactly
// once against the fallback; there is no retry loop beyond that.
type Router struct {
	primary         providers.TextGenerationProvider
	fallback        providers.TextGenerationProvider
	fallbackEnabled bool
	breakers        map[string]*gobreaker.CircuitBreaker
}

// NewRouter builds the router from configuration. The configured primary
// backend is constructed via the factory table; the remaining registered
// backend becomes the fallback when fallback is enabled and its key is
// configured.
func NewRouter(cfg *config.AIConfig) (*Router, error) {
	primary, err := New(cfg.PrimaryProvider, cfg)
	if err != nil {
		return nil, err
	}

	var fallback providers.TextGenerationProvider
	if cfg.FallbackEnabled {
		for _, name := range Supported() {
			if name == cfg.PrimaryProvider {
				continue
			}
			candidate, err := New(name, cfg)
			if err != nil {
				log.Warn().Err(err).Str("provider", name).Msg("fallback provider not configured")
				continue
			}
			fallback = candidate
			break
		}
	}

	return NewRouterWithProviders(primary, fallback, cfg.FallbackEnabled), nil
}

// NewRouterWithProviders builds a router over explicit backends.
func NewRouterWithProviders(primary, fallback providers.TextGenerationProvider, fallbackEnabled bool) *Router {
	r := &Router{
		primary:         primary,
		fallback:        fallback,
		fallbackEnabled: fallbackEnabled && fallback != nil,
		breakers:        make(map[string]*gobreaker.CircuitBreaker),
	}
	r.breakers[primary.Name()] = newBreaker(primary.Name())
	if fallback != nil {
		r.breakers[fallback.Name()] = newBreaker(fallback.Name())
	}
	return r
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

// Name reports the configured primary backend.
func (r *Router) Name() string {
	return r.primary.Name()
}

// Generate routes one prompt to the primary backend, falling back once on
// a retryable provider fault. When both backends fail the returned error
// wraps ErrAllProvidersUnavailable and carries both inner errors.
func (r *Router) Generate(ctx context.Context, prompt *entities.CompiledPrompt) (*entities.ProviderResponse, error) {
	resp, primaryErr := r.call(ctx, r.primary, prompt)
	if primaryErr == nil {
		return resp, nil
	}

	if !r.fallbackEnabled || !isRetryable(primaryErr) {
		return nil, primaryErr
	}

	log.Warn().
		Err(primaryErr).
		Str("primary", r.primary.Name()).
		Str("fallback", r.fallback.Name()).
		Msg("primary provider failed, retrying once on fallback")

	resp, fallbackErr := r.call(ctx, r.fallback, prompt)
	if fallbackErr == nil {
		return resp, nil
	}

	return nil, fmt.Errorf("%w: %s: %v; %s: %v",
		providers.ErrAllProvidersUnavailable,
		r.primary.Name(), primaryErr,
		r.fallback.Name(), fallbackErr)
}

// Probe reports primary backend availability. Probe failures never affect
// in-flight Generate calls.
func (r *Router) Probe(ctx context.Context) bool {
	return r.primary.Probe(ctx)
}

func (r *Router) call(ctx context.Context, provider providers.TextGenerationProvider, prompt *entities.CompiledPrompt) (*entities.ProviderResponse, error) {
	start := time.Now()
	result, err := r.breakers[provider.Name()].Execute(func() (interface{}, error) {
		return provider.Generate(ctx, prompt)
	})
	recordGenerationMetric(ctx, provider.Name(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return result.(*entities.ProviderResponse), nil
}

// isRetryable reports whether the fault warrants the single fallback
// attempt: unavailable transport, unusable payload, or an open breaker.
func isRetryable(err error) bool {
	return errors.Is(err, providers.ErrProviderUnavailable) ||
		errors.Is(err, providers.ErrProviderResponseMalformed) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
}
