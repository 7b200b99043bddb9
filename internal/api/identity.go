package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	userIdHeader  = "X-User-ID"
	tokenQueryKey = "token"
)

var errNoToken = errors.New("no identity token")

type contextKey string

const callerIdKey contextKey = "caller-id"

func WithCallerId(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, callerIdKey, uid)
}

// CallerId returns the participant the request claims to act as.
func CallerId(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(callerIdKey).(string)

	return uid, ok && uid != ""
}

// verifyToken checks an HS256 identity token and returns its subject.
func (s *SupportChatApp) verifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("get subject: %w", err)
	}
	if sub == "" {
		return "", fmt.Errorf("token has no subject")
	}

	return sub, nil
}

func bearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errNoToken
	}

	return token, nil
}

// resolveCaller determines who the request acts as. X-User-ID is taken at
// face value unless identity verification is on, in which case a bearer
// token must back it up.
func (s *SupportChatApp) resolveCaller(r *http.Request) (string, error) {
	claimed := r.Header.Get(userIdHeader)
	if !s.verifyIdentity {
		return claimed, nil
	}

	tokenString, err := bearerToken(r)
	if err != nil {
		return "", err
	}

	sub, err := s.verifyToken(tokenString)
	if err != nil {
		return "", err
	}

	if claimed != "" && claimed != sub {
		return "", fmt.Errorf("%s %q does not match token subject", userIdHeader, claimed)
	}

	return sub, nil
}

func (s *SupportChatApp) callerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := s.resolveCaller(r)
		if err != nil {
			s.log.Info("rejected caller identity", zap.Error(err), zap.String("path", r.URL.Path))
			errResp := NewUnauthorizedError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")

		next(w, r.WithContext(WithCallerId(r.Context(), uid)))
	}
}

// wsIdentity returns the identity a websocket may authenticate as. Browsers
// cannot set headers on upgrade requests, so the token travels in the query.
// An empty result means any auth frame is accepted.
func (s *SupportChatApp) wsIdentity(r *http.Request) (string, error) {
	if !s.verifyIdentity {
		return "", nil
	}

	tokenString := r.URL.Query().Get(tokenQueryKey)
	if tokenString == "" {
		return "", errNoToken
	}

	return s.verifyToken(tokenString)
}
