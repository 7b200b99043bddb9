package support

import (
	"context"
	"errors"

	"github.com/npezzotti/support-chat/internal/database"
	"github.com/npezzotti/support-chat/internal/types"
)

// GetOrCreateConversation returns the conversation for the exact
// (userId, adminId) pair, creating it with no unread messages when absent.
// An existing conversation is returned unchanged.
func (s *Service) GetOrCreateConversation(ctx context.Context, userId, adminId string) (types.Conversation, error) {
	if err := requireIds(userId, adminId); err != nil {
		return types.Conversation{}, err
	}

	c, err := s.db.GetOrCreateConversation(ctx, userId, adminId)
	if err != nil {
		return types.Conversation{}, storageError("get or create conversation", err)
	}

	return toConversation(c), nil
}

// UpdateConversation records lastMessage and refreshes its timestamp. The
// unread counter is only overwritten when unreadCount is non-nil.
func (s *Service) UpdateConversation(ctx context.Context, id int, lastMessage string, unreadCount *int) (types.Conversation, error) {
	c, err := s.db.UpdateConversation(ctx, database.UpdateConversationParams{
		Id:          id,
		LastMessage: lastMessage,
		UnreadCount: unreadCount,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return types.Conversation{}, &NotFoundError{Resource: "conversation"}
		}
		return types.Conversation{}, storageError("update conversation", err)
	}

	return toConversation(c), nil
}

// ConversationsForUser lists the user's conversations, most recently
// active first, with the admin's public profile attached.
func (s *Service) ConversationsForUser(ctx context.Context, userId string) ([]types.Conversation, error) {
	if userId == "" {
		return nil, newValidationError("userId", "userId is required")
	}

	convs, err := s.db.ListConversationsByUser(ctx, userId)
	if err != nil {
		return nil, storageError("list user conversations", err)
	}

	return toConversationSummaries(convs), nil
}

// ConversationsForAdmin lists the admin's conversations, most recently
// active first, with each user's public profile attached.
func (s *Service) ConversationsForAdmin(ctx context.Context, adminId string) ([]types.Conversation, error) {
	if adminId == "" {
		return nil, newValidationError("adminId", "adminId is required")
	}

	convs, err := s.db.ListConversationsByAdmin(ctx, adminId)
	if err != nil {
		return nil, storageError("list admin conversations", err)
	}

	return toConversationSummaries(convs), nil
}

func toConversationSummaries(convs []database.ConversationWithCounterpart) []types.Conversation {
	out := make([]types.Conversation, 0, len(convs))
	for _, c := range convs {
		out = append(out, toConversationSummary(c))
	}

	return out
}

func requireIds(userId, adminId string) error {
	var fields []FieldError
	if userId == "" {
		fields = append(fields, FieldError{Field: "userId", Message: "userId is required"})
	}
	if adminId == "" {
		fields = append(fields, FieldError{Field: "adminId", Message: "adminId is required"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	return nil
}
