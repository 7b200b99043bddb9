package support

import (
	"context"
	"errors"

	"github.com/npezzotti/support-chat/internal/database"
	"github.com/npezzotti/support-chat/internal/server"
	"github.com/npezzotti/support-chat/internal/stats"
	"github.com/npezzotti/support-chat/internal/types"
	"go.uber.org/zap"
)

type SendParams struct {
	SenderId       string  `json:"senderId" validate:"required,max=128"`
	ReceiverId     string  `json:"receiverId" validate:"required,max=128,nefield=SenderId"`
	Message        string  `json:"message" validate:"required_unless=HasAttachment true,max=10000"`
	HasAttachment  bool    `json:"hasAttachment"`
	AttachmentURL  *string `json:"attachmentURL" validate:"omitempty,url"`
	AttachmentType *string `json:"attachmentType" validate:"omitempty,max=100"`
	AttachmentName *string `json:"attachmentName" validate:"omitempty,max=255"`
}

type SendResult struct {
	Message types.ChatMessage
	// Delivered reports whether the receiver had a live connection that
	// accepted the notification.
	Delivered bool
}

// participants is a conversation pair with roles resolved.
type participants struct {
	userId  string
	adminId string
}

// Send stores a message, folds it into the pair's conversation summary
// and notifies the receiver. The unread counter only moves for messages
// addressed to the admin.
func (s *Service) Send(ctx context.Context, params SendParams) (SendResult, error) {
	if err := s.validateSend(params); err != nil {
		return SendResult{}, err
	}

	pair, err := s.resolvePair(ctx, params.SenderId, params.ReceiverId)
	if err != nil {
		return SendResult{}, err
	}

	msg, err := s.db.CreateChatMessage(ctx, database.CreateChatMessageParams{
		SenderId:       params.SenderId,
		ReceiverId:     params.ReceiverId,
		Message:        params.Message,
		HasAttachment:  params.HasAttachment,
		AttachmentURL:  params.AttachmentURL,
		AttachmentType: params.AttachmentType,
		AttachmentName: params.AttachmentName,
	})
	if err != nil {
		return SendResult{}, storageError("create message", err)
	}

	conv, err := s.db.GetOrCreateConversation(ctx, pair.userId, pair.adminId)
	if err != nil {
		return SendResult{}, storageError("get or create conversation", err)
	}

	var increment int
	if params.ReceiverId == conv.AdminId {
		increment = 1
	}

	if _, err := s.db.UpdateConversation(ctx, database.UpdateConversationParams{
		Id:              conv.Id,
		LastMessage:     preview(msg),
		UnreadIncrement: increment,
	}); err != nil {
		return SendResult{}, storageError("update conversation", err)
	}

	s.stats.Incr(stats.NumMessagesSent)

	chatMsg := toChatMessage(msg)
	delivered := s.notifier.Push(params.ReceiverId, server.NewMessage(chatMsg))

	s.log.Debug("message sent",
		zap.Int("message_id", msg.Id),
		zap.Int("conversation_id", conv.Id),
		zap.String("sender_id", msg.SenderId),
		zap.String("receiver_id", msg.ReceiverId),
		zap.Bool("delivered", delivered),
	)

	return SendResult{Message: chatMsg, Delivered: delivered}, nil
}

func (s *Service) validateSend(params SendParams) error {
	err := s.validateStruct(params)

	if params.HasAttachment && (params.AttachmentURL == nil || *params.AttachmentURL == "") {
		fe := FieldError{Field: "attachmentURL", Message: "attachmentURL is required when hasAttachment is set"}
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Fields = append(ve.Fields, fe)
			return ve
		}
		if err == nil {
			return &ValidationError{Fields: []FieldError{fe}}
		}
	}

	return err
}

// resolvePair decides which participant is the admin from their stored
// roles. When the roles don't tell the two apart, as with ids that never
// registered, the sender is taken as the user and the receiver as the admin.
func (s *Service) resolvePair(ctx context.Context, senderId, receiverId string) (participants, error) {
	senderAdmin, err := s.isAdmin(ctx, senderId)
	if err != nil {
		return participants{}, err
	}

	receiverAdmin, err := s.isAdmin(ctx, receiverId)
	if err != nil {
		return participants{}, err
	}

	if senderAdmin && !receiverAdmin {
		return participants{userId: receiverId, adminId: senderId}, nil
	}

	return participants{userId: senderId, adminId: receiverId}, nil
}

func (s *Service) isAdmin(ctx context.Context, uid string) (bool, error) {
	u, err := s.db.GetUserByUid(ctx, uid)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, storageError("get user", err)
	}

	return u.IsAdmin || u.Role == database.RoleAdmin, nil
}

// preview is the conversation's last message text. Attachment-only
// messages fall back to the attachment's name.
func preview(msg database.ChatMessage) string {
	if msg.Message == "" && msg.AttachmentName != nil {
		return *msg.AttachmentName
	}

	return msg.Message
}
