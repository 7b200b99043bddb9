package support

import (
	"context"
	"errors"

	"github.com/npezzotti/support-chat/internal/database"
	"github.com/npezzotti/support-chat/internal/types"
	"go.uber.org/zap"
)

// MarkRead flags every unread message from senderId to receiverId as read
// and clears the unread counter of the conversation the receiver
// administers, keeping its last message. Calling it again is a no-op.
func (s *Service) MarkRead(ctx context.Context, receiverId, senderId string) error {
	if err := requireReadIds(receiverId, senderId); err != nil {
		return err
	}

	n, err := s.db.MarkMessagesRead(ctx, receiverId, senderId)
	if err != nil {
		return storageError("mark messages read", err)
	}

	pair, err := s.resolvePair(ctx, senderId, receiverId)
	if err != nil {
		return err
	}

	// the counter only tracks messages addressed to the admin
	if pair.adminId != receiverId {
		return nil
	}

	conv, err := s.db.GetConversation(ctx, pair.userId, pair.adminId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return storageError("get conversation", err)
	}

	if conv.UnreadCount == 0 {
		return nil
	}

	var lastMessage string
	if conv.LastMessage != nil {
		lastMessage = *conv.LastMessage
	}

	zero := 0
	if _, err := s.db.UpdateConversation(ctx, database.UpdateConversationParams{
		Id:          conv.Id,
		LastMessage: lastMessage,
		UnreadCount: &zero,
	}); err != nil {
		return storageError("reset unread count", err)
	}

	s.log.Debug("marked messages read",
		zap.String("receiver_id", receiverId),
		zap.String("sender_id", senderId),
		zap.Int64("messages", n),
		zap.Int("conversation_id", conv.Id),
	)

	return nil
}

// Messages returns the messages exchanged between userId and adminId,
// oldest first. When actingAs is one of the two participants, the other
// participant's messages to them are marked read before loading.
func (s *Service) Messages(ctx context.Context, userId, adminId, actingAs string) ([]types.ChatMessage, error) {
	if err := requireIds(userId, adminId); err != nil {
		return nil, err
	}

	switch actingAs {
	case "":
	case adminId:
		if err := s.MarkRead(ctx, adminId, userId); err != nil {
			return nil, err
		}
	case userId:
		if err := s.MarkRead(ctx, userId, adminId); err != nil {
			return nil, err
		}
	default:
		s.log.Debug("reader is not a participant",
			zap.String("acting_as", actingAs),
			zap.String("user_id", userId),
			zap.String("admin_id", adminId),
		)
	}

	dbMessages, err := s.db.GetMessagesBetween(ctx, userId, adminId)
	if err != nil {
		return nil, storageError("get messages", err)
	}

	messages := make([]types.ChatMessage, 0, len(dbMessages))
	for _, m := range dbMessages {
		messages = append(messages, toChatMessage(m))
	}

	return messages, nil
}

func requireReadIds(receiverId, senderId string) error {
	var fields []FieldError
	if receiverId == "" {
		fields = append(fields, FieldError{Field: "receiverId", Message: "receiverId is required"})
	}
	if senderId == "" {
		fields = append(fields, FieldError{Field: "senderId", Message: "senderId is required"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	return nil
}
