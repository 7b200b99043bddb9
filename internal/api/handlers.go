package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/npezzotti/support-chat/internal/support"
	"github.com/npezzotti/support-chat/internal/types"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type ContactResponse struct {
	Message string        `json:"message"`
	Contact types.Contact `json:"contact"`
}

type ContactsResponse struct {
	Contacts []types.Contact `json:"contacts"`
}

type UserResponse struct {
	User types.User `json:"user"`
}

type AdminResponse struct {
	Admin types.PublicProfile `json:"admin"`
}

type SendMessageResponse struct {
	ChatMessage types.ChatMessage `json:"chatMessage"`
	Delivered   bool              `json:"delivered"`
}

type MessagesResponse struct {
	Messages []types.ChatMessage `json:"messages"`
}

type ConversationsResponse struct {
	Conversations []types.Conversation `json:"conversations"`
}

func (s *SupportChatApp) writeJson(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("json encode", zap.Error(err))
	}
}

// writeError logs server-side failures and writes errResp. Causes are
// never serialized.
func (s *SupportChatApp) writeError(w http.ResponseWriter, r *http.Request, errResp *ApiError) {
	if errResp.StatusCode >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(errResp.Err),
		)
	}

	s.writeJson(w, errResp.StatusCode, errResp)
}

// decodeJson reads a JSON request body into v. Type mismatches are
// reported against the offending field.
func decodeJson(r *http.Request, v any) *ApiError {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return NewValidationError([]support.FieldError{{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("%s must be a %s", typeErr.Field, jsonTypeName(typeErr.Type.String())),
			}})
		}
		return NewBadRequestError()
	}

	return nil
}

func jsonTypeName(goType string) string {
	switch goType {
	case "string", "*string":
		return "string"
	case "bool":
		return "boolean"
	default:
		return goType
	}
}

func (s *SupportChatApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		errResp := NewInternalServerError(err)
		s.writeError(w, r, errResp)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *SupportChatApp) submitContact(w http.ResponseWriter, r *http.Request) {
	var params support.ContactParams
	if errResp := decodeJson(r, &params); errResp != nil {
		s.writeError(w, r, errResp)
		return
	}

	contact, err := s.svc.SubmitContact(r.Context(), params)
	if err != nil {
		s.writeError(w, r, fromServiceError(err))
		return
	}

	s.writeJson(w, http.StatusCreated, ContactResponse{
		Message: "contact form submitted successfully",
		Contact: contact,
	})
}

func (s *SupportChatApp) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.svc.ListContacts(r.Context())
	if err != nil {
		s.writeError(w, r, fromServiceError(err))
		return
	}

	s.writeJson(w, http.StatusOK, ContactsResponse{Contacts: contacts})
}

func (s *SupportChatApp) upsertUser(w http.ResponseWriter, r *http.Request) {
	var params support.UpsertUserParams
	if errResp := decodeJson(r, &params); errResp != nil {
		s.writeError(w, r, errResp)
		return
	}

	user, created, err := s.svc.UpsertUser(r.Context(), params)
	if err != nil {
		s.writeError(w, r, fromServiceError(err))
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	s.writeJson(w, status, UserResponse{User: user})
}

func (s *SupportChatApp) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.GetUser(r.Context(), r.URL.Query().Get("uid"))
	if err != nil {
		s.writeError(w, r, fromServiceError(err))
		return
	}

	s.writeJson(w, http.StatusOK, UserResponse{User: user})
}

func (s *SupportChatApp) getAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := s.svc.GetAdmin(r.Context())
	if err != nil {
		s.writeError(w, r, fromServiceError(err))
		return
	}

	s.writeJson(w, http.StatusOK, AdminResponse{Admin: admin})
}

func (s *SupportChatApp) sendMessage(w http.ResponseWriter, r *http.Request) {
	var params support.SendParams
	if errResp := decodeJson(r, &params); errResp != nil {
		s.writeError(w, r, errResp)
		return
	}

	res, err := s.svc.Send(r.Context(), params)
	if err != nil {
		s.writeError(w, r, fromServiceError(err))
		return
	}

	s.writeJson(w, http.StatusCreated, SendMessageResponse{
		ChatMessage: res.Message,
		Delivered:   res.Delivered,
	})
}

func (s *SupportChatApp) getMessages(w http.ResponseWriter, r *http.Request) {
	actingAs, _ := CallerId(r.Context())

	messages, err := s.svc.Messages(r.Context(), r.PathValue("userId"), r.PathValue("adminId"), actingAs)
	if err != nil {
		s.writeError(w, r, fromServiceError(err))
		return
	}

	s.writeJson(w, http.StatusOK, MessagesResponse{Messages: messages})
}

func (s *SupportChatApp) adminConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := s.svc.ConversationsForAdmin(r.Context(), r.PathValue("adminId"))
	if err != nil {
		s.writeError(w, r, fromServiceError(err))
		return
	}

	s.writeJson(w, http.StatusOK, ConversationsResponse{Conversations: convs})
}

func (s *SupportChatApp) userConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := s.svc.ConversationsForUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		s.writeError(w, r, fromServiceError(err))
		return
	}

	s.writeJson(w, http.StatusOK, ConversationsResponse{Conversations: convs})
}

func (s *SupportChatApp) serveWs(w http.ResponseWriter, r *http.Request) {
	verifiedUid, err := s.wsIdentity(r)
	if err != nil {
		s.log.Info("rejected websocket identity", zap.Error(err))
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("error upgrading connection", zap.Error(err))
		return
	}

	s.notifier.Serve(conn, verifiedUid)
}
