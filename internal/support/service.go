// Package support implements the support chat: user registration,
// contact submissions, messaging between users and the admin, and the
// conversation summaries and read state that go with it.
package support

import (
	"github.com/go-playground/validator/v10"
	"github.com/npezzotti/support-chat/internal/database"
	"github.com/npezzotti/support-chat/internal/server"
	"github.com/npezzotti/support-chat/internal/stats"
	"go.uber.org/zap"
)

// Pusher delivers a frame to a participant's live connection, if any,
// and reports whether it was accepted.
type Pusher interface {
	Push(uid string, msg *server.ServerMessage) bool
}

type Service struct {
	db         database.Repository
	notifier   Pusher
	stats      stats.StatsProvider
	log        *zap.Logger
	adminEmail string
	validate   *validator.Validate
}

func NewService(logger *zap.Logger, db database.Repository, notifier Pusher, su stats.StatsProvider, adminEmail string) *Service {
	su.RegisterMetric(stats.NumMessagesSent)
	su.RegisterMetric(stats.NumContactSubmissions)

	return &Service{
		db:         db,
		notifier:   notifier,
		stats:      su,
		log:        logger,
		adminEmail: adminEmail,
		validate:   newValidator(),
	}
}
