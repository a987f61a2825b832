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

// ConversationAdapter implements conversation persistence in Postgres.
type ConversationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewConversationAdapter creates a new conversation adapter.
func NewConversationAdapter(client *postgres.Client) repositories.ConversationRepository {
	return &ConversationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a conversation record.
func (a *ConversationAdapter) Create(ctx context.Context, conversation *entities.Conversation) error {
	if conversation == nil {
		return apperrors.NewInternalError("conversation is nil", fmt.Errorf("conversation is nil"))
	}

	record := goqu.Record{
		"id":         conversation.ID,
		"user_id":    conversation.UserID,
		"title":      conversation.Title,
		"created_at": conversation.CreatedAt,
		"updated_at": conversation.UpdatedAt,
	}

	query, args, err := a.db.Insert("conversations").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build conversation insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create conversation", err)
	}

	return nil
}

// GetByID fetches one conversation.
func (a *ConversationAdapter) GetByID(ctx context.Context, id string) (*entities.Conversation, error) {
	query, args, err := a.db.From("conversations").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build conversation select query", err)
	}

	var conversation entities.Conversation
	if err := a.client.DB().GetContext(ctx, &conversation, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("conversation %s not found", id))
		}
		return nil, apperrors.NewInternalError("failed to get conversation", err)
	}

	return &conversation, nil
}

// AppendMessage inserts one message. Call order defines history order.
func (a *ConversationAdapter) AppendMessage(ctx context.Context, message *entities.Message) error {
	if message == nil {
		return apperrors.NewInternalError("message is nil", fmt.Errorf("message is nil"))
	}

	record := goqu.Record{
		"id":              message.ID,
		"conversation_id": message.ConversationID,
		"role":            string(message.Role),
		"content":         message.Content,
		"created_at":      message.CreatedAt,
	}

	query, args, err := a.db.Insert("messages").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build message insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to append message", err)
	}

	return nil
}

// ListRecentMessages returns the most recent messages of a conversation in
// chronological order (oldest of the window first).
func (a *ConversationAdapter) ListRecentMessages(ctx context.Context, conversationID string, limit int) ([]*entities.Message, error) {
	if limit <= 0 {
		limit = 20
	}

	// Window selection needs the newest rows; callers need them oldest
	// first, so the recent window is re-ordered in an outer select.
	inner := a.db.From("messages").
		Where(goqu.Ex{"conversation_id": conversationID}).
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit))

	query, args, err := a.db.From(inner.As("recent")).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build message select query", err)
	}

	var messages []*entities.Message
	if err := a.client.DB().SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list messages", err)
	}

	return messages, nil
}
