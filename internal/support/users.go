package support

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/npezzotti/support-chat/internal/database"
	"github.com/npezzotti/support-chat/internal/types"
	"go.uber.org/zap"
)

const uniqueViolation = pq.ErrorCode("23505")

// UpsertUserParams carries the profile issued by the identity provider.
type UpsertUserParams struct {
	Uid         string  `json:"uid" validate:"required,max=128"`
	Email       string  `json:"email" validate:"required,email"`
	DisplayName *string `json:"displayName" validate:"omitempty,max=200"`
	PhotoURL    *string `json:"photoURL" validate:"omitempty,url"`
}

// UpsertUser bumps the last login of a known uid or registers a new user.
// The admin flag is only granted at creation, when the email exactly
// matches the configured admin address. The bool result reports whether
// the user was created.
func (s *Service) UpsertUser(ctx context.Context, params UpsertUserParams) (types.User, bool, error) {
	if err := s.validateStruct(params); err != nil {
		return types.User{}, false, err
	}

	_, err := s.db.GetUserByUid(ctx, params.Uid)
	switch {
	case err == nil:
		return s.touchUser(ctx, params.Uid)
	case !errors.Is(err, database.ErrNotFound):
		return types.User{}, false, storageError("get user", err)
	}

	isAdmin := params.Email == s.adminEmail
	role := database.RoleUser
	if isAdmin {
		role = database.RoleAdmin
	}

	u, err := s.db.CreateUser(ctx, database.CreateUserParams{
		Uid:         params.Uid,
		Email:       params.Email,
		DisplayName: params.DisplayName,
		PhotoURL:    params.PhotoURL,
		IsAdmin:     isAdmin,
		Role:        role,
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			// a concurrent login registered the same uid first
			return s.touchUser(ctx, params.Uid)
		}
		return types.User{}, false, storageError("create user", err)
	}

	s.log.Info("registered user",
		zap.String("uid", u.Uid),
		zap.Bool("is_admin", u.IsAdmin),
	)

	return toUser(u), true, nil
}

func (s *Service) touchUser(ctx context.Context, uid string) (types.User, bool, error) {
	u, err := s.db.UpdateUserLastLogin(ctx, uid)
	if err != nil {
		return types.User{}, false, storageError("update last login", err)
	}

	return toUser(u), false, nil
}

func (s *Service) GetUser(ctx context.Context, uid string) (types.User, error) {
	if uid == "" {
		return types.User{}, newValidationError("uid", "uid is required")
	}

	u, err := s.db.GetUserByUid(ctx, uid)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return types.User{}, &NotFoundError{Resource: "user"}
		}
		return types.User{}, storageError("get user", err)
	}

	return toUser(u), nil
}

// GetAdmin returns the public profile of the first admin user.
func (s *Service) GetAdmin(ctx context.Context) (types.PublicProfile, error) {
	u, err := s.db.GetAdminUser(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return types.PublicProfile{}, &NotFoundError{Resource: "admin"}
		}
		return types.PublicProfile{}, storageError("get admin", err)
	}

	return types.PublicProfile{
		Uid:         u.Uid,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}, nil
}
