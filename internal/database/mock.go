package database

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockRepository) GetUserByUid(ctx context.Context, uid string) (User, error) {
	args := m.Called(uid)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) UpdateUserLastLogin(ctx context.Context, uid string) (User, error) {
	args := m.Called(uid)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) GetAdminUser(ctx context.Context) (User, error) {
	args := m.Called()
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) CreateContact(ctx context.Context, params CreateContactParams) (Contact, error) {
	args := m.Called(params)
	return args.Get(0).(Contact), args.Error(1)
}
func (m *MockRepository) ListContacts(ctx context.Context) ([]Contact, error) {
	args := m.Called()
	return args.Get(0).([]Contact), args.Error(1)
}
func (m *MockRepository) CreateChatMessage(ctx context.Context, params CreateChatMessageParams) (ChatMessage, error) {
	args := m.Called(params)
	return args.Get(0).(ChatMessage), args.Error(1)
}
func (m *MockRepository) GetMessagesBetween(ctx context.Context, userId, adminId string) ([]ChatMessage, error) {
	args := m.Called(userId, adminId)
	return args.Get(0).([]ChatMessage), args.Error(1)
}
func (m *MockRepository) MarkMessagesRead(ctx context.Context, receiverId, senderId string) (int64, error) {
	args := m.Called(receiverId, senderId)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockRepository) GetConversation(ctx context.Context, userId, adminId string) (Conversation, error) {
	args := m.Called(userId, adminId)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockRepository) GetOrCreateConversation(ctx context.Context, userId, adminId string) (Conversation, error) {
	args := m.Called(userId, adminId)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockRepository) UpdateConversation(ctx context.Context, params UpdateConversationParams) (Conversation, error) {
	args := m.Called(params)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockRepository) ListConversationsByUser(ctx context.Context, userId string) ([]ConversationWithCounterpart, error) {
	args := m.Called(userId)
	return args.Get(0).([]ConversationWithCounterpart), args.Error(1)
}
func (m *MockRepository) ListConversationsByAdmin(ctx context.Context, adminId string) ([]ConversationWithCounterpart, error) {
	args := m.Called(adminId)
	return args.Get(0).([]ConversationWithCounterpart), args.Error(1)
}
