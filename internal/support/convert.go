package support

import (
	"github.com/npezzotti/support-chat/internal/database"
	"github.com/npezzotti/support-chat/internal/types"
)

func toUser(u database.User) types.User {
	return types.User{
		Id:          u.Id,
		Uid:         u.Uid,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		IsAdmin:     u.IsAdmin,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
	}
}

func toContact(c database.Contact) types.Contact {
	return types.Contact{
		Id:        c.Id,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Subject:   c.Subject,
		Message:   c.Message,
		CreatedAt: c.CreatedAt,
	}
}

func toChatMessage(m database.ChatMessage) types.ChatMessage {
	return types.ChatMessage{
		Id:             m.Id,
		SenderId:       m.SenderId,
		ReceiverId:     m.ReceiverId,
		Message:        m.Message,
		HasAttachment:  m.HasAttachment,
		AttachmentURL:  m.AttachmentURL,
		AttachmentType: m.AttachmentType,
		AttachmentName: m.AttachmentName,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
}

func toConversation(c database.Conversation) types.Conversation {
	return types.Conversation{
		Id:              c.Id,
		UserId:          c.UserId,
		AdminId:         c.AdminId,
		LastMessage:     c.LastMessage,
		LastMessageTime: c.LastMessageTime,
		UnreadCount:     c.UnreadCount,
		CreatedAt:       c.CreatedAt,
	}
}

func toConversationSummary(c database.ConversationWithCounterpart) types.Conversation {
	conv := toConversation(c.Conversation)
	if c.CounterpartUid != nil {
		conv.Counterpart = &types.PublicProfile{
			Uid:         *c.CounterpartUid,
			DisplayName: c.CounterpartDisplayName,
			PhotoURL:    c.CounterpartPhotoURL,
		}
		if c.CounterpartEmail != nil {
			conv.Counterpart.Email = *c.CounterpartEmail
		}
	}

	return conv
}
