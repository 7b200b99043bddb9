package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/npezzotti/support-chat/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthSuccess(t *testing.T) {
	bytes, err := serializeMessage(AuthSuccess("U1"))
	assert.NoError(t, err, "expected no error during serialization")
	assert.Equal(t, `{"type":"auth_success","uid":"U1"}`, string(bytes))
}

func TestNewMessage(t *testing.T) {
	now := time.Now().UTC().Round(time.Millisecond)
	msg := types.ChatMessage{
		Id:         3,
		SenderId:   "U1",
		ReceiverId: "ADMIN",
		Message:    "hello",
		CreatedAt:  now,
	}

	bytes, err := serializeMessage(NewMessage(msg))
	require.NoError(t, err)

	var decoded struct {
		Type string            `json:"type"`
		Uid  *string           `json:"uid"`
		Data types.ChatMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(bytes, &decoded))
	assert.Equal(t, FrameNewMessage, decoded.Type)
	assert.Nil(t, decoded.Uid, "expected uid to be omitted")
	assert.Equal(t, msg.Id, decoded.Data.Id)
	assert.Equal(t, msg.Message, decoded.Data.Message)
	assert.True(t, msg.CreatedAt.Equal(decoded.Data.CreatedAt))
}

func Test_parseClientMessage(t *testing.T) {
	tcases := []struct {
		name     string
		raw      string
		expected *ClientMessage
		err      bool
	}{
		{
			name:     "auth frame",
			raw:      `{"type":"auth","uid":"U1"}`,
			expected: &ClientMessage{Type: FrameAuth, Uid: "U1"},
		},
		{
			name:     "unknown frame",
			raw:      `{"type":"typing"}`,
			expected: &ClientMessage{Type: "typing"},
		},
		{
			name: "invalid json",
			raw:  `{"type":`,
			err:  true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := parseClientMessage([]byte(tc.raw))
			if tc.err {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, msg)
		})
	}
}
