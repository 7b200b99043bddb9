package database

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNotFound = errors.New("record not found")

type Repository interface {
	Ping(ctx context.Context) error

	GetUserByUid(ctx context.Context, uid string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	UpdateUserLastLogin(ctx context.Context, uid string) (User, error)
	GetAdminUser(ctx context.Context) (User, error)

	CreateContact(ctx context.Context, params CreateContactParams) (Contact, error)
	ListContacts(ctx context.Context) ([]Contact, error)

	CreateChatMessage(ctx context.Context, params CreateChatMessageParams) (ChatMessage, error)
	GetMessagesBetween(ctx context.Context, userId, adminId string) ([]ChatMessage, error)
	MarkMessagesRead(ctx context.Context, receiverId, senderId string) (int64, error)

	GetConversation(ctx context.Context, userId, adminId string) (Conversation, error)
	GetOrCreateConversation(ctx context.Context, userId, adminId string) (Conversation, error)
	UpdateConversation(ctx context.Context, params UpdateConversationParams) (Conversation, error)
	ListConversationsByUser(ctx context.Context, userId string) ([]ConversationWithCounterpart, error)
	ListConversationsByAdmin(ctx context.Context, adminId string) ([]ConversationWithCounterpart, error)
}

// notFound maps sql.ErrNoRows to ErrNotFound and passes any other error through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
