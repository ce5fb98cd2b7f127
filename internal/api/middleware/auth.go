package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dom/videotube-identity/internal/api/response"
	"github.com/dom/videotube-identity/internal/domain"
	"github.com/dom/videotube-identity/internal/service"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserKey contextKey = "user"

	AccessTokenCookie = "accessToken"
)

// Authenticator resolves a raw access token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*domain.User, error)
}

// Auth rejects the request with 401 unless it carries a valid access token,
// either in the accessToken cookie or as a Bearer Authorization header.
func Auth(authenticator Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := AccessToken(r)
			if raw == "" {
				response.Error(w, http.StatusUnauthorized, service.ErrUnauthorized.Message)
				return
			}

			user, err := authenticator.Authenticate(r.Context(), raw)
			if err != nil {
				message := service.ErrInvalidAccessToken.Message
				var svcErr *service.Error
				if errors.As(err, &svcErr) {
					message = svcErr.Message
				} else {
					logger.ErrorContext(r.Context(), "authenticate request", "path", r.URL.Path, "error", err)
				}
				response.Error(w, http.StatusUnauthorized, message)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccessToken extracts the access token, preferring the cookie.
func AccessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	scheme, tok, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	user, ok := GetUser(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}
