package types

import (
	"time"
)

type User struct {
	Id          int        `json:"id"`
	Uid         string     `json:"uid"`
	Email       string     `json:"email"`
	DisplayName *string    `json:"displayName"`
	PhotoURL    *string    `json:"photoURL"`
	IsAdmin     bool       `json:"isAdmin"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLogin   *time.Time `json:"lastLogin"`
}

// PublicProfile is the subset of a user that other participants may see.
type PublicProfile struct {
	Uid         string  `json:"uid"`
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}

type Contact struct {
	Id        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChatMessage struct {
	Id             int       `json:"id"`
	SenderId       string    `json:"senderId"`
	ReceiverId     string    `json:"receiverId"`
	Message        string    `json:"message"`
	HasAttachment  bool      `json:"hasAttachment"`
	AttachmentURL  *string   `json:"attachmentURL"`
	AttachmentType *string   `json:"attachmentType"`
	AttachmentName *string   `json:"attachmentName"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Conversation struct {
	Id              int            `json:"id"`
	UserId          string         `json:"userId"`
	AdminId         string         `json:"adminId"`
	LastMessage     *string        `json:"lastMessage"`
	LastMessageTime *time.Time     `json:"lastMessageTime"`
	UnreadCount     int            `json:"unreadCount"`
	CreatedAt       time.Time      `json:"createdAt"`
	Counterpart     *PublicProfile `json:"counterpart,omitempty"`
}
