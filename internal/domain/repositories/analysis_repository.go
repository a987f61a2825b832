package repositories

import (
	"context"

	"github.com/clinaid/medassist/internal/domain/entities"
)

// AnalysisRepository stores final structured pipeline results for later
// retrieval.
type AnalysisRepository interface {
	Create(ctx context.Context, result *entities.AnalysisResult) error
	GetByID(ctx context.Context, id string) (*entities.AnalysisResult, error)
	ListByConversation(ctx context.Context, conversationID string, limit int) ([]*entities.AnalysisResult, error)
}
