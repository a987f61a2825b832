package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinaid/medassist/internal/domain/entities"
	"github.com/clinaid/medassist/internal/domain/repositories"
)

// ConversationHandler handles conversation lookups and creation.
type ConversationHandler struct {
	conversations repositories.ConversationRepository
	analyses      repositories.AnalysisRepository
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(
	conversations repositories.ConversationRepository,
	analyses repositories.AnalysisRepository,
) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		analyses:      analyses,
	}
}

type createConversationRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
}

// CreateConversation handles POST /api/conversations
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var payload createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Title == "" {
		payload.Title = "New consultation"
	}

	now := time.Now().UTC()
	conversation := &entities.Conversation{
		ID:        uuid.New().String(),
		UserID:    strings.TrimSpace(payload.UserID),
		Title:     payload.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.conversations.Create(r.Context(), conversation); err != nil {
		respondWithAppError(w, err, "failed to create conversation")
		return
	}

	respondWithJSON(w, http.StatusCreated, conversation)
}

// GetConversation handles GET /api/conversations/{id}
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	conversation, err := h.conversations.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err, "failed to get conversation")
		return
	}

	respondWithJSON(w, http.StatusOK, conversation)
}

// ListMessages handles GET /api/conversations/{id}/messages
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	messages, err := h.conversations.ListRecentMessages(r.Context(), id, parseLimit(r, 50))
	if err != nil {
		respondWithAppError(w, err, "failed to list messages")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

// ListAnalyses handles GET /api/conversations/{id}/analyses
func (h *ConversationHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	results, err := h.analyses.ListByConversation(r.Context(), id, parseLimit(r, 20))
	if err != nil {
		respondWithAppError(w, err, "failed to list analyses")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": results,
		"count":    len(results),
	})
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 100 {
		return fallback
	}
	return limit
}
