package server

import (
	"encoding/json"

	"github.com/npezzotti/support-chat/internal/types"
)

const (
	FrameAuth        = "auth"
	FrameAuthSuccess = "auth_success"
	FrameNewMessage  = "new_message"
)

// ClientMessage is a frame received from a client.
type ClientMessage struct {
	Type string `json:"type"`
	Uid  string `json:"uid,omitempty"`
}

// ServerMessage is a frame sent to a client.
type ServerMessage struct {
	Type string             `json:"type"`
	Uid  string             `json:"uid,omitempty"`
	Data *types.ChatMessage `json:"data,omitempty"`
}

func AuthSuccess(uid string) *ServerMessage {
	return &ServerMessage{
		Type: FrameAuthSuccess,
		Uid:  uid,
	}
}

func NewMessage(msg types.ChatMessage) *ServerMessage {
	return &ServerMessage{
		Type: FrameNewMessage,
		Data: &msg,
	}
}

func serializeMessage(msg *ServerMessage) ([]byte, error) {
	return json.Marshal(msg)
}

func parseClientMessage(raw []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}

	return &msg, nil
}
