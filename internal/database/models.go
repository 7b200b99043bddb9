package database

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	Id          int        `db:"id"`
	Uid         string     `db:"uid"`
	Email       string     `db:"email"`
	DisplayName *string    `db:"display_name"`
	PhotoURL    *string    `db:"photo_url"`
	IsAdmin     bool       `db:"is_admin"`
	Role        string     `db:"role"`
	CreatedAt   time.Time  `db:"created_at"`
	LastLogin   *time.Time `db:"last_login"`
}

type Contact struct {
	Id        int       `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     *string   `db:"phone"`
	Subject   string    `db:"subject"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

type ChatMessage struct {
	Id             int       `db:"id"`
	SenderId       string    `db:"sender_id"`
	ReceiverId     string    `db:"receiver_id"`
	Message        string    `db:"message"`
	HasAttachment  bool      `db:"has_attachment"`
	AttachmentURL  *string   `db:"attachment_url"`
	AttachmentType *string   `db:"attachment_type"`
	AttachmentName *string   `db:"attachment_name"`
	IsRead         bool      `db:"is_read"`
	CreatedAt      time.Time `db:"created_at"`
}

type Conversation struct {
	Id              int        `db:"id"`
	UserId          string     `db:"user_id"`
	AdminId         string     `db:"admin_id"`
	LastMessage     *string    `db:"last_message"`
	LastMessageTime *time.Time `db:"last_message_time"`
	UnreadCount     int        `db:"unread_count"`
	CreatedAt       time.Time  `db:"created_at"`
}

// ConversationWithCounterpart is a conversation joined with the public
// profile of the participant on the other side of the listing. The
// counterpart columns are null when that participant never registered.
type ConversationWithCounterpart struct {
	Conversation
	CounterpartUid         *string `db:"counterpart_uid"`
	CounterpartEmail       *string `db:"counterpart_email"`
	CounterpartDisplayName *string `db:"counterpart_display_name"`
	CounterpartPhotoURL    *string `db:"counterpart_photo_url"`
}

type CreateUserParams struct {
	Uid         string
	Email       string
	DisplayName *string
	PhotoURL    *string
	IsAdmin     bool
	Role        string
}

type CreateContactParams struct {
	Name    string
	Email   string
	Phone   *string
	Subject string
	Message string
}

type CreateChatMessageParams struct {
	SenderId       string
	ReceiverId     string
	Message        string
	HasAttachment  bool
	AttachmentURL  *string
	AttachmentType *string
	AttachmentName *string
}

type UpdateConversationParams struct {
	Id          int
	LastMessage string
	// UnreadCount overwrites the stored counter when set.
	UnreadCount *int
	// UnreadIncrement is added after the optional overwrite.
	UnreadIncrement int
}
