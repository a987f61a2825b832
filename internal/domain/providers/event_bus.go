package providers

import (
	"context"

	"github.com/clinaid/medassist/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// assistant events.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.AssistantEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.AssistantEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// Event channel constants.
const (
	// EventChannelSummaries carries article summary completion events.
	EventChannelSummaries = "assistant:summaries"

	// EventChannelConversationPrefix is the prefix for per-conversation
	// channels.
	EventChannelConversationPrefix = "conversation:"
)

// GetConversationChannel returns the channel name for one conversation.
func GetConversationChannel(conversationID string) string {
	return EventChannelConversationPrefix + conversationID
}
