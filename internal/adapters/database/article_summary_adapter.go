package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/clinaid/medassist/internal/domain/entities"
	"github.com/clinaid/medassist/internal/domain/repositories"
	"github.com/clinaid/medassist/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinaid/medassist/pkg/errors"
)

// ArticleSummaryAdapter implements article summary persistence in Postgres.
type ArticleSummaryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewArticleSummaryAdapter creates a new article summary adapter.
func NewArticleSummaryAdapter(client *postgres.Client) repositories.ArticleSummaryRepository {
	return &ArticleSummaryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Upsert writes a summary row keyed by article id. The background worker
// calls this twice per article: once with the pending placeholder and once
// with the final state.
func (a *ArticleSummaryAdapter) Upsert(ctx context.Context, summary *entities.ArticleSummary) error {
	if summary == nil {
		return apperrors.NewInternalError("article summary is nil", fmt.Errorf("article summary is nil"))
	}

	record := goqu.Record{
		"id":         summary.ID,
		"article_id": summary.ArticleID,
		"title":      summary.Title,
		"abstract":   summary.Abstract,
		"status":     string(summary.Status),
		"summary":    summary.Summary,
		"provider":   summary.Provider,
		"model":      summary.Model,
		"created_at": summary.CreatedAt,
		"updated_at": summary.UpdatedAt,
	}

	query, args, err := a.db.Insert("article_summaries").
		Rows(record).
		OnConflict(goqu.DoUpdate("article_id", goqu.Record{
			"status":     string(summary.Status),
			"summary":    summary.Summary,
			"provider":   summary.Provider,
			"model":      summary.Model,
			"updated_at": summary.UpdatedAt,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build article summary upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert article summary", err)
	}

	return nil
}

// GetByArticleID fetches the summary row for an article.
func (a *ArticleSummaryAdapter) GetByArticleID(ctx context.Context, articleID string) (*entities.ArticleSummary, error) {
	query, args, err := a.db.From("article_summaries").
		Where(goqu.Ex{"article_id": articleID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build article summary select query", err)
	}

	var summary entities.ArticleSummary
	if err := a.client.DB().GetContext(ctx, &summary, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("summary for article %s not found", articleID))
		}
		return nil, apperrors.NewInternalError("failed to get article summary", err)
	}

	return &summary, nil
}
