package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRepository(t *testing.T) (*PgRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to create sqlmock")
	t.Cleanup(func() { db.Close() })

	return NewPgRepositoryFromDB(sqlx.NewDb(db, "postgres"), zaptest.NewLogger(t)), mock
}

func conversationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "admin_id", "last_message", "last_message_time", "unread_count", "created_at"})
}

func TestGetUserByUid(t *testing.T) {
	userCols := []string{"id", "uid", "email", "display_name", "photo_url", "is_admin", "role", "created_at", "last_login"}
	query := regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE uid = $1 LIMIT 1")
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectQuery(query).
			WithArgs("U1").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "U1", "u1@example.com", "User One", nil, false, RoleUser, now, nil))

		u, err := repo.GetUserByUid(context.Background(), "U1")
		require.NoError(t, err)
		assert.Equal(t, 1, u.Id)
		assert.Equal(t, "U1", u.Uid)
		assert.Equal(t, "u1@example.com", u.Email)
		require.NotNil(t, u.DisplayName)
		assert.Equal(t, "User One", *u.DisplayName)
		assert.Nil(t, u.PhotoURL)
		assert.Nil(t, u.LastLogin)
		assert.Equal(t, RoleUser, u.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectQuery(query).WithArgs("missing").WillReturnRows(sqlmock.NewRows(userCols))

		_, err := repo.GetUserByUid(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkMessagesRead(t *testing.T) {
	query := regexp.QuoteMeta("UPDATE chat_messages SET is_read = TRUE WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE")

	t.Run("returns affected rows", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectExec(query).WithArgs("ADMIN", "U1").WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.MarkMessagesRead(context.Background(), "ADMIN", "U1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectExec(query).WithArgs("ADMIN", "U1").WillReturnError(errors.New("db error"))

		_, err := repo.MarkMessagesRead(context.Background(), "ADMIN", "U1")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetOrCreateConversation(t *testing.T) {
	insert := regexp.QuoteMeta("INSERT INTO conversations (user_id, admin_id, unread_count, created_at) " +
		"VALUES ($1, $2, 0, $3) ON CONFLICT (user_id, admin_id) DO NOTHING")
	selectQuery := regexp.QuoteMeta("SELECT " + conversationColumns + " FROM conversations WHERE user_id = $1 AND admin_id = $2 LIMIT 1")
	now := time.Now().UTC()

	t.Run("returns the stored row", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectExec(insert).WithArgs("U1", "ADMIN", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(selectQuery).
			WithArgs("U1", "ADMIN").
			WillReturnRows(conversationRows().AddRow(7, "U1", "ADMIN", "hello", now, 2, now))

		c, err := repo.GetOrCreateConversation(context.Background(), "U1", "ADMIN")
		require.NoError(t, err)
		assert.Equal(t, 7, c.Id)
		assert.Equal(t, 2, c.UnreadCount)
		require.NotNil(t, c.LastMessage)
		assert.Equal(t, "hello", *c.LastMessage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert fails", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectExec(insert).WithArgs("U1", "ADMIN", sqlmock.AnyArg()).WillReturnError(errors.New("db error"))

		_, err := repo.GetOrCreateConversation(context.Background(), "U1", "ADMIN")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateConversation(t *testing.T) {
	query := regexp.QuoteMeta("UPDATE conversations SET last_message = $2, last_message_time = $3, " +
		"unread_count = COALESCE($4::integer, unread_count) + $5 " +
		"WHERE id = $1 RETURNING " + conversationColumns)
	now := time.Now().UTC()

	t.Run("keeps unread count when omitted", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectQuery(query).
			WithArgs(7, "hello", sqlmock.AnyArg(), nil, 1).
			WillReturnRows(conversationRows().AddRow(7, "U1", "ADMIN", "hello", now, 3, now))

		c, err := repo.UpdateConversation(context.Background(), UpdateConversationParams{
			Id:              7,
			LastMessage:     "hello",
			UnreadIncrement: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, c.UnreadCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("overwrites unread count", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		zero := 0
		mock.ExpectQuery(query).
			WithArgs(7, "hello", sqlmock.AnyArg(), 0, 0).
			WillReturnRows(conversationRows().AddRow(7, "U1", "ADMIN", "hello", now, 0, now))

		c, err := repo.UpdateConversation(context.Background(), UpdateConversationParams{
			Id:          7,
			LastMessage: "hello",
			UnreadCount: &zero,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, c.UnreadCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing conversation", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectQuery(query).
			WithArgs(99, "hello", sqlmock.AnyArg(), nil, 0).
			WillReturnRows(conversationRows())

		_, err := repo.UpdateConversation(context.Background(), UpdateConversationParams{Id: 99, LastMessage: "hello"})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListConversationsByAdmin(t *testing.T) {
	repo, mock := newTestRepository(t)
	now := time.Now().UTC()
	cols := []string{
		"id", "user_id", "admin_id", "last_message", "last_message_time", "unread_count", "created_at",
		"counterpart_uid", "counterpart_email", "counterpart_display_name", "counterpart_photo_url",
	}

	mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf(listConversationsQuery, "user_id", "admin_id"))).
		WithArgs("ADMIN").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, "U2", "ADMIN", "latest", now, 1, now, "U2", "u2@example.com", nil, nil).
			AddRow(1, "U1", "ADMIN", nil, nil, 0, now, nil, nil, nil, nil))

	convs, err := repo.ListConversationsByAdmin(context.Background(), "ADMIN")
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "U2", convs[0].UserId)
	require.NotNil(t, convs[0].CounterpartEmail)
	assert.Equal(t, "u2@example.com", *convs[0].CounterpartEmail)
	assert.Nil(t, convs[1].CounterpartUid)
	assert.Nil(t, convs[1].LastMessage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
