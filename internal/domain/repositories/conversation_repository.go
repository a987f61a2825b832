package repositories

import (
	"context"

	"github.com/clinaid/medassist/internal/domain/entities"
)

// ConversationRepository is the persistence boundary for conversations and
// their message history. The pipeline only reads the supplied recent
// history and appends messages in call order; serializing concurrent turns
// on the same conversation is the collaborator's concern.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *entities.Conversation) error
	GetByID(ctx context.Context, id string) (*entities.Conversation, error)
	AppendMessage(ctx context.Context, message *entities.Message) error
	ListRecentMessages(ctx context.Context, conversationID string, limit int) ([]*entities.Message, error)
}
