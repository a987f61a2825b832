package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinaid/medassist/internal/domain/entities"
	"github.com/clinaid/medassist/internal/domain/providers"
	"github.com/clinaid/medassist/internal/domain/repositories"
	apperrors "github.com/clinaid/medassist/pkg/errors"
)

// summaryPlaceholder is the value callers see until the detached task
// completes; they re-fetch later for the final summary.
const summaryPlaceholder = "Summary generation in progress. Check back shortly."

const summaryQueueSize = 64

type summaryTask struct {
	summary entities.ArticleSummary
}

// ArticleSummaryService generates literature summaries as fire-and-forget
// background work. Enqueue returns immediately with a pending placeholder;
// a fixed worker pool compiles a summary prompt, calls the provider
// router, persists the final text and publishes a completion event. The
// triggering request path never blocks on generation.
type ArticleSummaryService struct {
	generator providers.TextGenerationProvider
	repo      repositories.ArticleSummaryRepository
	bus       providers.EventBus

	tasks     chan summaryTask
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewArticleSummaryService creates the service and starts its workers.
func NewArticleSummaryService(
	generator providers.TextGenerationProvider,
	repo repositories.ArticleSummaryRepository,
	bus providers.EventBus,
	workers int,
) *ArticleSummaryService {
	if workers <= 0 {
		workers = 2
	}

	s := &ArticleSummaryService{
		generator: generator,
		repo:      repo,
		bus:       bus,
		tasks:     make(chan summaryTask, summaryQueueSize),
	}

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	return s
}

// Enqueue registers a pending summary and dispatches generation to the
// background pool. The returned summary carries the placeholder text.
func (s *ArticleSummaryService) Enqueue(ctx context.Context, articleID, title, abstract string) (*entities.ArticleSummary, error) {
	if articleID == "" || strings.TrimSpace(title) == "" {
		return nil, apperrors.NewValidationError("article id and title are required")
	}

	now := time.Now().UTC()
	pending := &entities.ArticleSummary{
		ID:        uuid.NewString(),
		ArticleID: articleID,
		Title:     strings.TrimSpace(title),
		Abstract:  strings.TrimSpace(abstract),
		Status:    entities.SummaryStatusPending,
		Summary:   summaryPlaceholder,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if s.repo != nil {
		if err := s.repo.Upsert(ctx, pending); err != nil {
			return nil, apperrors.NewInternalError("failed to store pending summary", err)
		}
	}

	select {
	case s.tasks <- summaryTask{summary: *pending}:
	default:
		return nil, apperrors.NewUnavailableError("summary queue is full", nil)
	}

	return pending, nil
}

// Close stops accepting tasks and waits for in-flight workers to drain.
func (s *ArticleSummaryService) Close() {
	s.closeOnce.Do(func() {
		close(s.tasks)
	})
	s.wg.Wait()
}

func (s *ArticleSummaryService) worker() {
	defer s.wg.Done()
	for task := range s.tasks {
		s.process(task)
	}
}

func (s *ArticleSummaryService) process(task summaryTask) {
	// Detached from the triggering request: the worker owns its own
	// lifetime, bounded only by the provider's call timeout.
	ctx := context.Background()
	summary := task.summary

	resp, err := s.generator.Generate(ctx, compileSummaryPrompt(summary.Title, summary.Abstract))
	if err != nil {
		log.Error().Err(err).Str("article_id", summary.ArticleID).Msg("article summary generation failed")
		summary.Status = entities.SummaryStatusFailed
		summary.Summary = ""
		s.finish(ctx, &summary, entities.EventSummaryFailed)
		return
	}

	summary.Status = entities.SummaryStatusReady
	summary.Summary = resp.Text
	summary.Provider = resp.Provider
	summary.Model = resp.Model
	s.finish(ctx, &summary, entities.EventSummaryReady)
}

func (s *ArticleSummaryService) finish(ctx context.Context, summary *entities.ArticleSummary, eventType entities.EventType) {
	summary.UpdatedAt = time.Now().UTC()

	if s.repo != nil {
		if err := s.repo.Upsert(ctx, summary); err != nil {
			log.Error().Err(err).Str("article_id", summary.ArticleID).Msg("failed to persist article summary")
		}
	}

	if s.bus == nil {
		return
	}
	event := &entities.AssistantEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: summary.ArticleID,
		Timestamp: time.Now().UTC(),
	}
	if err := s.bus.Publish(ctx, providers.EventChannelSummaries, event); err != nil {
		log.Warn().Err(err).Str("article_id", summary.ArticleID).Msg("failed to publish summary event")
	}
}

func compileSummaryPrompt(title, abstract string) *entities.CompiledPrompt {
	var b strings.Builder
	b.WriteString(rolePreamble)
	b.WriteString("\n\nSummarize the following publication for a practicing clinician in at most 120 words. ")
	b.WriteString("State the study question, key findings and clinical relevance. Do not invent results.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", title)
	if abstract != "" {
		fmt.Fprintf(&b, "Abstract: %s\n", abstract)
	}

	return &entities.CompiledPrompt{
		Text:            b.String(),
		Temperature:     0.3,
		MaxOutputTokens: 512,
		SafetyThreshold: "BLOCK_ONLY_HIGH",
	}
}
