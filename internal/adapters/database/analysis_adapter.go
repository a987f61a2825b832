package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/clinaid/medassist/internal/domain/entities"
	"github.com/clinaid/medassist/internal/domain/repositories"
	"github.com/clinaid/medassist/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinaid/medassist/pkg/errors"
)

// AnalysisAdapter implements analysis result persistence in Postgres.
// Structured findings, safety flags and the risk assessment are stored as
// JSONB columns.
type AnalysisAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAnalysisAdapter creates a new analysis adapter.
func NewAnalysisAdapter(client *postgres.Client) repositories.AnalysisRepository {
	return &AnalysisAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

type analysisRow struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	RequestKind    string    `db:"request_kind"`
	Answer         string    `db:"answer"`
	Findings       []byte    `db:"findings"`
	SafetyFlags    []byte    `db:"safety_flags"`
	Risk           []byte    `db:"risk"`
	Disclaimer     string    `db:"disclaimer"`
	FollowUps      []byte    `db:"follow_up_prompts"`
	Provider       string    `db:"provider"`
	Model          string    `db:"model"`
	TokenEstimate  int       `db:"token_estimate"`
	ElapsedMS      int64     `db:"elapsed_ms"`
	Degraded       bool      `db:"degraded"`
	CreatedAt      time.Time `db:"created_at"`
}

// Create inserts an analysis result.
func (a *AnalysisAdapter) Create(ctx context.Context, result *entities.AnalysisResult) error {
	if result == nil {
		return apperrors.NewInternalError("analysis result is nil", fmt.Errorf("analysis result is nil"))
	}

	findings, err := json.Marshal(result.Findings)
	if err != nil {
		return apperrors.NewInternalError("failed to encode findings", err)
	}
	flags, err := json.Marshal(result.SafetyFlags)
	if err != nil {
		return apperrors.NewInternalError("failed to encode safety flags", err)
	}
	risk, err := json.Marshal(result.Risk)
	if err != nil {
		return apperrors.NewInternalError("failed to encode risk assessment", err)
	}
	followUps, err := json.Marshal(result.FollowUpPrompts)
	if err != nil {
		return apperrors.NewInternalError("failed to encode follow-up prompts", err)
	}

	record := goqu.Record{
		"id":                result.ID,
		"conversation_id":   result.ConversationID,
		"request_kind":      string(result.RequestKind),
		"answer":            result.Answer,
		"findings":          findings,
		"safety_flags":      flags,
		"risk":              risk,
		"disclaimer":        result.Disclaimer,
		"follow_up_prompts": followUps,
		"provider":          result.Provider,
		"model":             result.Model,
		"token_estimate":    result.TokenEstimate,
		"elapsed_ms":        result.ElapsedMS,
		"degraded":          result.Degraded,
		"created_at":        result.CreatedAt,
	}

	query, args, err := a.db.Insert("analysis_results").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build analysis insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create analysis result", err)
	}

	return nil
}

// GetByID fetches one analysis result.
func (a *AnalysisAdapter) GetByID(ctx context.Context, id string) (*entities.AnalysisResult, error) {
	query, args, err := a.db.From("analysis_results").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build analysis select query", err)
	}

	var row analysisRow
	if err := a.client.DB().GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("analysis %s not found", id))
		}
		return nil, apperrors.NewInternalError("failed to get analysis result", err)
	}

	return rowToResult(&row)
}

// ListByConversation returns the most recent analysis results for a
// conversation, newest first.
func (a *AnalysisAdapter) ListByConversation(ctx context.Context, conversationID string, limit int) ([]*entities.AnalysisResult, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := a.db.From("analysis_results").
		Where(goqu.Ex{"conversation_id": conversationID}).
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build analysis select query", err)
	}

	var rows []analysisRow
	if err := a.client.DB().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list analysis results", err)
	}

	results := make([]*entities.AnalysisResult, 0, len(rows))
	for i := range rows {
		result, err := rowToResult(&rows[i])
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

func rowToResult(row *analysisRow) (*entities.AnalysisResult, error) {
	result := &entities.AnalysisResult{
		ID:             row.ID,
		ConversationID: row.ConversationID,
		RequestKind:    entities.RequestKind(row.RequestKind),
		Answer:         row.Answer,
		Disclaimer:     row.Disclaimer,
		Provider:       row.Provider,
		Model:          row.Model,
		TokenEstimate:  row.TokenEstimate,
		ElapsedMS:      row.ElapsedMS,
		Degraded:       row.Degraded,
		CreatedAt:      row.CreatedAt,
	}

	if len(row.Findings) > 0 {
		if err := json.Unmarshal(row.Findings, &result.Findings); err != nil {
			return nil, apperrors.NewInternalError("failed to decode findings", err)
		}
	}
	if len(row.SafetyFlags) > 0 {
		if err := json.Unmarshal(row.SafetyFlags, &result.SafetyFlags); err != nil {
			return nil, apperrors.NewInternalError("failed to decode safety flags", err)
		}
	}
	if len(row.Risk) > 0 {
		if err := json.Unmarshal(row.Risk, &result.Risk); err != nil {
			return nil, apperrors.NewInternalError("failed to decode risk assessment", err)
		}
	}
	if len(row.FollowUps) > 0 {
		if err := json.Unmarshal(row.FollowUps, &result.FollowUpPrompts); err != nil {
			return nil, apperrors.NewInternalError("failed to decode follow-up prompts", err)
		}
	}

	return result, nil
}
