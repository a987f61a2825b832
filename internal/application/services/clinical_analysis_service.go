package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinaid/medassist/internal/domain/entities"
	"github.com/clinaid/medassist/internal/domain/providers"
	"github.com/clinaid/medassist/internal/domain/repositories"
	apperrors "github.com/clinaid/medassist/pkg/errors"
)

// resultDisclaimer is attached to every result returned to a clinical user.
const resultDisclaimer = "This content is AI-generated decision support for licensed clinicians. " +
	"It is advisory only, may be incomplete or incorrect, and is not a substitute for professional clinical judgment."

// emergencyAdvisory is returned when the deterministic keyword check trips,
// without consulting any model.
const emergencyAdvisory = "The input describes a potential medical emergency. " +
	"Do not wait for AI-generated guidance: contact local emergency services or move the patient to emergency care immediately."

// degradedAdvisory is the fixed user-facing message on total provider
// failure. A clinical user must never see a blank or stack-trace-shaped
// response.
const degradedAdvisory = "The assistant is temporarily unable to generate a response. " +
	"Please consult a qualified healthcare professional for guidance on this question, and try again later."

// degradedFollowUps are generic safe prompts offered alongside the
// degraded advisory, never silence.
var degradedFollowUps = []string{
	"Would you like general guidance on when to seek urgent care?",
	"Do you want to review the patient's current medication list?",
	"Would you like to rephrase the question with more clinical detail?",
}

// ClinicalAnalysisService runs the full pipeline for one clinical request:
// safety short-circuit, prompt compilation, routed generation, extraction
// and risk aggregation. Each run is an independent stateless unit of work;
// conversation history and results cross the persistence boundary only at
// the edges of Analyze.
type ClinicalAnalysisService struct {
	generator     providers.TextGenerationProvider
	compiler      *PromptCompiler
	extractor     *ResponseExtractor
	safety        *SafetyService
	aggregator    *RiskAggregator
	conversations repositories.ConversationRepository
	analyses      repositories.AnalysisRepository
	bus           providers.EventBus
}

// NewClinicalAnalysisService creates the pipeline orchestrator. The
// repositories may be nil, in which case results are returned but not
// persisted.
func NewClinicalAnalysisService(
	generator providers.TextGenerationProvider,
	compiler *PromptCompiler,
	extractor *ResponseExtractor,
	safety *SafetyService,
	aggregator *RiskAggregator,
	conversations repositories.ConversationRepository,
	analyses repositories.AnalysisRepository,
) *ClinicalAnalysisService {
	return &ClinicalAnalysisService{
		generator:     generator,
		compiler:      compiler,
		extractor:     extractor,
		safety:        safety,
		aggregator:    aggregator,
		conversations: conversations,
		analyses:      analyses,
	}
}

// SetEventBus enables analysis.stored notifications on the per
// conversation channel. Without a bus, persistence stays silent.
func (s *ClinicalAnalysisService) SetEventBus(bus providers.EventBus) {
	s.bus = bus
}

// Analyze runs one pipeline pass. Provider faults are recovered by the
// router once; total provider failure surfaces as a degraded-service
// result, never as an error the caller must render.
func (s *ClinicalAnalysisService) Analyze(ctx context.Context, req entities.ClinicalRequest) (*entities.AnalysisResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Hard short-circuit: the keyword check runs before any provider call
	// and its hit skips generation entirely.
	if flag := s.safety.CheckEmergency(req.Text); flag != nil {
		result := s.emergencyResult(req, *flag)
		s.persist(ctx, req, result)
		return result, nil
	}

	history := s.loadHistory(ctx, req.ConversationID)
	prompt := s.compiler.Compile(req, history)

	resp, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		if isProviderFault(err) {
			log.Error().Err(err).Str("kind", string(req.Kind)).Msg("all providers failed, returning degraded result")
			result := s.degradedResult(req)
			s.persist(ctx, req, result)
			return result, nil
		}
		return nil, apperrors.NewInternalError("text generation failed", err)
	}

	findings := s.extractor.Extract(resp.Text, req.Kind)
	if findings.Empty() {
		log.Warn().
			Str("provider", resp.Provider).
			Str("kind", string(req.Kind)).
			Msg("extraction recovered no structured findings")
	}

	flags := s.safety.CheckMedications(req.Medications)
	risk := s.aggregator.Aggregate(findings, flags)

	result := &entities.AnalysisResult{
		ID:             uuid.NewString(),
		ConversationID: req.ConversationID,
		RequestKind:    req.Kind,
		Answer:         resp.Text,
		Findings:       *findings,
		SafetyFlags:    flags,
		Risk:           risk,
		Disclaimer:     resultDisclaimer,
		Provider:       resp.Provider,
		Model:          resp.Model,
		TokenEstimate:  resp.TokenEstimate,
		ElapsedMS:      resp.Elapsed.Milliseconds(),
		CreatedAt:      time.Now().UTC(),
	}

	s.persist(ctx, req, result)
	return result, nil
}

func (s *ClinicalAnalysisService) emergencyResult(req entities.ClinicalRequest, flag entities.SafetyFlag) *entities.AnalysisResult {
	return &entities.AnalysisResult{
		ID:             uuid.NewString(),
		ConversationID: req.ConversationID,
		RequestKind:    req.Kind,
		Answer:         emergencyAdvisory,
		SafetyFlags:    []entities.SafetyFlag{flag},
		Risk: entities.RiskAssessment{
			RiskLevel:                  entities.RiskLevelCritical,
			UrgencyLevel:               entities.UrgencyEmergency,
			ConfidenceLevel:            entities.ConfidenceHigh,
			RequiresImmediateAttention: true,
		},
		Disclaimer: resultDisclaimer,
		CreatedAt:  time.Now().UTC(),
	}
}

func (s *ClinicalAnalysisService) degradedResult(req entities.ClinicalRequest) *entities.AnalysisResult {
	// The medication safety floor holds even when no model is reachable.
	flags := s.safety.CheckMedications(req.Medications)
	risk := s.aggregator.Aggregate(&entities.FindingSet{}, flags)

	return &entities.AnalysisResult{
		ID:              uuid.NewString(),
		ConversationID:  req.ConversationID,
		RequestKind:     req.Kind,
		Answer:          degradedAdvisory,
		SafetyFlags:     flags,
		Risk:            risk,
		Disclaimer:      resultDisclaimer,
		FollowUpPrompts: degradedFollowUps,
		Degraded:        true,
		CreatedAt:       time.Now().UTC(),
	}
}

// loadHistory fetches the recent turns for prompt compilation. History is
// an enrichment: a persistence fault degrades to an empty excerpt rather
// than failing the run.
func (s *ClinicalAnalysisService) loadHistory(ctx context.Context, conversationID string) []*entities.Message {
	if conversationID == "" || s.conversations == nil {
		return nil
	}
	history, err := s.conversations.ListRecentMessages(ctx, conversationID, s.compiler.historyWindow)
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to load conversation history")
		return nil
	}
	return history
}

// persist appends the user turn and assistant answer in call order and
// stores the structured result. Persistence faults are logged, not
// surfaced: the caller still gets the computed result.
func (s *ClinicalAnalysisService) persist(ctx context.Context, req entities.ClinicalRequest, result *entities.AnalysisResult) {
	now := time.Now().UTC()

	if s.conversations != nil && req.ConversationID != "" {
		userMsg := &entities.Message{
			ID:             uuid.NewString(),
			ConversationID: req.ConversationID,
			Role:           entities.RoleUser,
			Content:        req.Text,
			CreatedAt:      now,
		}
		assistantMsg := &entities.Message{
			ID:             uuid.NewString(),
			ConversationID: req.ConversationID,
			Role:           entities.RoleAssistant,
			Content:        result.Answer,
			CreatedAt:      now,
		}
		if err := s.conversations.AppendMessage(ctx, userMsg); err != nil {
			log.Warn().Err(err).Msg("failed to append user message")
		} else if err := s.conversations.AppendMessage(ctx, assistantMsg); err != nil {
			log.Warn().Err(err).Msg("failed to append assistant message")
		}
	}

	if s.analyses != nil {
		if err := s.analyses.Create(ctx, result); err != nil {
			log.Warn().Err(err).Str("analysis_id", result.ID).Msg("failed to persist analysis result")
		} else {
			s.notifyStored(ctx, req.ConversationID, result.ID)
		}
	}
}

// notifyStored publishes analysis.stored so clients following the
// conversation can refresh without polling.
func (s *ClinicalAnalysisService) notifyStored(ctx context.Context, conversationID, analysisID string) {
	if s.bus == nil || conversationID == "" {
		return
	}
	event := &entities.AssistantEvent{
		ID:        uuid.NewString(),
		Type:      entities.EventAnalysisStored,
		SubjectID: analysisID,
		Timestamp: time.Now().UTC(),
	}
	if err := s.bus.Publish(ctx, providers.GetConversationChannel(conversationID), event); err != nil {
		log.Warn().Err(err).Str("analysis_id", analysisID).Msg("failed to publish analysis event")
	}
}

func isProviderFault(err error) bool {
	return errors.Is(err, providers.ErrAllProvidersUnavailable) ||
		errors.Is(err, providers.ErrProviderUnavailable) ||
		errors.Is(err, providers.ErrProviderResponseMalformed)
}
