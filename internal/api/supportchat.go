package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/npezzotti/support-chat/internal/config"
	"github.com/npezzotti/support-chat/internal/database"
	"github.com/npezzotti/support-chat/internal/server"
	"github.com/npezzotti/support-chat/internal/support"
	"github.com/teris-io/shortid"
	"go.uber.org/zap"
)

type SupportChatApp struct {
	log               *zap.Logger
	db                database.Repository
	mux               *http.Server
	notifier          *server.Notifier
	svc               *support.Service
	signingKey        []byte
	verifyIdentity    bool
	allowedOrigins    []string
	generateRequestId func() (string, error)
}

func NewSupportChatApp(mux *http.ServeMux, logger *zap.Logger, n *server.Notifier, svc *support.Service, db database.Repository, cfg *config.Config) *SupportChatApp {
	s := &SupportChatApp{
		log:               logger,
		db:                db,
		notifier:          n,
		svc:               svc,
		signingKey:        cfg.SigningKey,
		verifyIdentity:    cfg.VerifyIdentity,
		allowedOrigins:    cfg.AllowedOrigins,
		generateRequestId: shortid.Generate,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/contact", s.submitContact)
	mux.HandleFunc("GET /api/contacts", s.listContacts)
	mux.HandleFunc("POST /api/users/firebase", s.upsertUser)
	mux.HandleFunc("GET /api/users/firebase", s.getUser)
	mux.HandleFunc("GET /api/admin", s.getAdmin)
	mux.HandleFunc("POST /api/messages", s.sendMessage)
	mux.HandleFunc("GET /api/messages/{userId}/{adminId}", s.callerMiddleware(s.getMessages))
	mux.HandleFunc("GET /api/conversations/admin/{adminId}", s.adminConversations)
	mux.HandleFunc("GET /api/conversations/user/{userId}", s.userConversations)
	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization", userIdHeader}),
		handlers.ExposedHeaders([]string{requestIdHeader}),
	)(mux)

	h = s.requestLogger(h)
	h = s.errorHandler(h)

	s.mux = &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	return s
}

func (s *SupportChatApp) Start() error {
	s.log.Info("starting server", zap.String("addr", s.mux.Addr))
	return s.mux.ListenAndServe()
}

func (s *SupportChatApp) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
