package repositories

import (
	"context"

	"github.com/clinaid/medassist/internal/domain/entities"
)

// ArticleSummaryRepository stores background-generated literature
// summaries.
type ArticleSummaryRepository interface {
	Upsert(ctx context.Context, summary *entities.ArticleSummary) error
	GetByArticleID(ctx context.Context, articleID string) (*entities.ArticleSummary, error)
}
