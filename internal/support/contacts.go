package support

import (
	"context"

	"github.com/npezzotti/support-chat/internal/database"
	"github.com/npezzotti/support-chat/internal/stats"
	"github.com/npezzotti/support-chat/internal/types"
	"go.uber.org/zap"
)

type ContactParams struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Subject string  `json:"subject" validate:"required,max=200"`
	Message string  `json:"message" validate:"required,max=5000"`
}

// SubmitContact stores a landing page contact form submission as-is.
func (s *Service) SubmitContact(ctx context.Context, params ContactParams) (types.Contact, error) {
	if err := s.validateStruct(params); err != nil {
		return types.Contact{}, err
	}

	phone := params.Phone
	if phone != nil && *phone == "" {
		phone = nil
	}

	c, err := s.db.CreateContact(ctx, database.CreateContactParams{
		Name:    params.Name,
		Email:   params.Email,
		Phone:   phone,
		Subject: params.Subject,
		Message: params.Message,
	})
	if err != nil {
		return types.Contact{}, storageError("create contact", err)
	}

	s.stats.Incr(stats.NumContactSubmissions)
	s.log.Info("contact submitted", zap.Int("contact_id", c.Id))

	return toContact(c), nil
}

// ListContacts returns every submission, newest first.
func (s *Service) ListContacts(ctx context.Context) ([]types.Contact, error) {
	dbContacts, err := s.db.ListContacts(ctx)
	if err != nil {
		return nil, storageError("list contacts", err)
	}

	contacts := make([]types.Contact, 0, len(dbContacts))
	for _, c := range dbContacts {
		contacts = append(contacts, toContact(c))
	}

	return contacts, nil
}
