package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/clinaid/medassist/internal/domain/entities"
	"github.com/clinaid/medassist/internal/domain/repositories"
)

// SummaryService defines the background summarization operations used by
// the handler.
type SummaryService interface {
	Enqueue(ctx context.Context, articleID, title, abstract string) (*entities.ArticleSummary, error)
}

// ArticleSummaryHandler handles background article summarization.
type ArticleSummaryHandler struct {
	service   SummaryService
	summaries repositories.ArticleSummaryRepository
}

// NewArticleSummaryHandler creates a new article summary handler.
func NewArticleSummaryHandler(
	service SummaryService,
	summaries repositories.ArticleSummaryRepository,
) *ArticleSummaryHandler {
	return &ArticleSummaryHandler{
		service:   service,
		summaries: summaries,
	}
}

type summarizeRequest struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

// Summarize handles POST /api/articles/{id}/summary
//
// Responds 202 with the pending placeholder; generation continues in the
// background and the final state is published on the event bus.
func (h *ArticleSummaryHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	articleID := r.PathValue("id")
	if articleID == "" {
		respondWithError(w, http.StatusBadRequest, "article id is required")
		return
	}

	var payload summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Title == "" {
		respondWithError(w, http.StatusBadRequest, "article title is required")
		return
	}

	summary, err := h.service.Enqueue(r.Context(), articleID, payload.Title, strings.TrimSpace(payload.Abstract))
	if err != nil {
		respondWithAppError(w, err, "failed to enqueue summary")
		return
	}

	respondWithJSON(w, http.StatusAccepted, summary)
}

// GetSummary handles GET /api/articles/{id}/summary
func (h *ArticleSummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	articleID := r.PathValue("id")
	if articleID == "" {
		respondWithError(w, http.StatusBadRequest, "article id is required")
		return
	}

	summary, err := h.summaries.GetByArticleID(r.Context(), articleID)
	if err != nil {
		respondWithAppError(w, err, "failed to get summary")
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
