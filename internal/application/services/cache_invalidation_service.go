package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clinaid/medassist/internal/domain/entities"
	"github.com/clinaid/medassist/internal/domain/providers"
)

// CacheInvalidationService drops cached summary responses when a
// background generation finishes. Without it a client polling
// GET /api/articles/{id}/summary can keep seeing the cached pending
// placeholder for the full TTL after the summary is already ready.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for summary events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelSummaries)
	if err != nil {
		return fmt.Errorf("failed to subscribe to summary events: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.AssistantEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent drops the cached response for the article's summary route.
// Query-parameterized variants keep their short TTL; only the plain GET
// entry must reflect the new state immediately.
func (s *CacheInvalidationService) handleEvent(event *entities.AssistantEvent) {
	if event.Type != entities.EventSummaryReady && event.Type != entities.EventSummaryFailed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := fmt.Sprintf("http:cache:/api/articles/%s/summary", event.SubjectID)
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to invalidate summary cache")
		return
	}
	log.Debug().Str("key", key).Str("event", string(event.Type)).Msg("invalidated summary cache")
}
