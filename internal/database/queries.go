package database

import (
	"context"
	"fmt"
	"time"
)

const (
	userColumns         = "id, uid, email, display_name, photo_url, is_admin, role, created_at, last_login"
	contactColumns      = "id, name, email, phone, subject, message, created_at"
	chatMessageColumns  = "id, sender_id, receiver_id, message, has_attachment, attachment_url, attachment_type, attachment_name, is_read, created_at"
	conversationColumns = "id, user_id, admin_id, last_message, last_message_time, unread_count, created_at"

	listConversationsQuery = `
		SELECT
				c.id,
				c.user_id,
				c.admin_id,
				c.last_message,
				c.last_message_time,
				c.unread_count,
				c.created_at,
				u.uid AS counterpart_uid,
				u.email AS counterpart_email,
				u.display_name AS counterpart_display_name,
				u.photo_url AS counterpart_photo_url
		FROM conversations c
		LEFT JOIN users u ON u.uid = c.%s
		WHERE c.%s = $1
		ORDER BY c.last_message_time DESC NULLS LAST, c.id DESC`
)

func (db *PgRepository) GetUserByUid(ctx context.Context, uid string) (User, error) {
	var u User
	err := db.conn.GetContext(ctx, &u,
		"SELECT "+userColumns+" FROM users WHERE uid = $1 LIMIT 1",
		uid,
	)

	return u, notFound(err)
}

func (db *PgRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := db.conn.GetContext(ctx, &u,
		"SELECT "+userColumns+" FROM users WHERE email = $1 ORDER BY id LIMIT 1",
		email,
	)

	return u, notFound(err)
}

func (db *PgRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	role := params.Role
	if role == "" {
		role = RoleUser
	}

	var u User
	err := db.conn.GetContext(ctx, &u,
		"INSERT INTO users (uid, email, display_name, photo_url, is_admin, role, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING "+userColumns,
		params.Uid,
		params.Email,
		params.DisplayName,
		params.PhotoURL,
		params.IsAdmin,
		role,
		time.Now().UTC(),
	)

	return u, err
}

func (db *PgRepository) UpdateUserLastLogin(ctx context.Context, uid string) (User, error) {
	var u User
	err := db.conn.GetContext(ctx, &u,
		"UPDATE users SET last_login = $2 WHERE uid = $1 RETURNING "+userColumns,
		uid,
		time.Now().UTC(),
	)

	return u, notFound(err)
}

func (db *PgRepository) GetAdminUser(ctx context.Context) (User, error) {
	var u User
	err := db.conn.GetContext(ctx, &u,
		"SELECT "+userColumns+" FROM users WHERE is_admin = TRUE ORDER BY id LIMIT 1",
	)

	return u, notFound(err)
}

func (db *PgRepository) CreateContact(ctx context.Context, params CreateContactParams) (Contact, error) {
	var c Contact
	err := db.conn.GetContext(ctx, &c,
		"INSERT INTO contacts (name, email, phone, subject, message, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) RETURNING "+contactColumns,
		params.Name,
		params.Email,
		params.Phone,
		params.Subject,
		params.Message,
		time.Now().UTC(),
	)

	return c, err
}

func (db *PgRepository) ListContacts(ctx context.Context) ([]Contact, error) {
	contacts := make([]Contact, 0)
	err := db.conn.SelectContext(ctx, &contacts,
		"SELECT "+contactColumns+" FROM contacts ORDER BY id DESC",
	)

	return contacts, err
}

func (db *PgRepository) CreateChatMessage(ctx context.Context, params CreateChatMessageParams) (ChatMessage, error) {
	var msg ChatMessage
	err := db.conn.GetContext(ctx, &msg,
		"INSERT INTO chat_messages (sender_id, receiver_id, message, has_attachment, attachment_url, attachment_type, attachment_name, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING "+chatMessageColumns,
		params.SenderId,
		params.ReceiverId,
		params.Message,
		params.HasAttachment,
		params.AttachmentURL,
		params.AttachmentType,
		params.AttachmentName,
		time.Now().UTC(),
	)

	return msg, err
}

func (db *PgRepository) GetMessagesBetween(ctx context.Context, userId, adminId string) ([]ChatMessage, error) {
	messages := make([]ChatMessage, 0)
	err := db.conn.SelectContext(ctx, &messages,
		"SELECT "+chatMessageColumns+" FROM chat_messages "+
			"WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1) "+
			"ORDER BY created_at ASC, id ASC",
		userId,
		adminId,
	)

	return messages, err
}

func (db *PgRepository) MarkMessagesRead(ctx context.Context, receiverId, senderId string) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE chat_messages SET is_read = TRUE "+
			"WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE",
		receiverId,
		senderId,
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (db *PgRepository) GetConversation(ctx context.Context, userId, adminId string) (Conversation, error) {
	var c Conversation
	err := db.conn.GetContext(ctx, &c,
		"SELECT "+conversationColumns+" FROM conversations WHERE user_id = $1 AND admin_id = $2 LIMIT 1",
		userId,
		adminId,
	)

	return c, notFound(err)
}

// GetOrCreateConversation relies on the (user_id, admin_id) unique
// constraint so concurrent first messages converge on a single row.
func (db *PgRepository) GetOrCreateConversation(ctx context.Context, userId, adminId string) (Conversation, error) {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO conversations (user_id, admin_id, unread_count, created_at) "+
			"VALUES ($1, $2, 0, $3) ON CONFLICT (user_id, admin_id) DO NOTHING",
		userId,
		adminId,
		time.Now().UTC(),
	)
	if err != nil {
		return Conversation{}, fmt.Errorf("insert conversation: %w", err)
	}

	return db.GetConversation(ctx, userId, adminId)
}

func (db *PgRepository) UpdateConversation(ctx context.Context, params UpdateConversationParams) (Conversation, error) {
	var c Conversation
	err := db.conn.GetContext(ctx, &c,
		"UPDATE conversations SET last_message = $2, last_message_time = $3, "+
			"unread_count = COALESCE($4::integer, unread_count) + $5 "+
			"WHERE id = $1 RETURNING "+conversationColumns,
		params.Id,
		params.LastMessage,
		time.Now().UTC(),
		params.UnreadCount,
		params.UnreadIncrement,
	)

	return c, notFound(err)
}

func (db *PgRepository) ListConversationsByUser(ctx context.Context, userId string) ([]ConversationWithCounterpart, error) {
	convs := make([]ConversationWithCounterpart, 0)
	err := db.conn.SelectContext(ctx, &convs,
		fmt.Sprintf(listConversationsQuery, "admin_id", "user_id"),
		userId,
	)

	return convs, err
}

func (db *PgRepository) ListConversationsByAdmin(ctx context.Context, adminId string) ([]ConversationWithCounterpart, error) {
	convs := make([]ConversationWithCounterpart, 0)
	err := db.conn.SelectContext(ctx, &convs,
		fmt.Sprintf(listConversationsQuery, "user_id", "admin_id"),
		adminId,
	)

	return convs, err
}
