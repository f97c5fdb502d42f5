package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/happyhourhub/backend/internal/db"
	apperrors "github.com/happyhourhub/backend/internal/errors"
)

type contextKey string

const UserContextKey contextKey = "user"

// UserContext is the resolved identity attached to authenticated requests.
type UserContext struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
}

// RequireAuth gates a handler behind a valid session. Any failure (missing
// cookie, bad token, token whose user no longer exists) responds 401. The
// store is only consulted after the token checks out, so garbage tokens never
// cost a query.
func RequireAuth(s *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := apperrors.GetRequestID(r.Context())

			userCtx, err := s.resolveUser(r)
			if err != nil {
				switch {
				case errors.Is(err, ErrNoToken):
					apperrors.WriteError(w, requestID, apperrors.Unauthenticated("Authentication required. Please log in."))
				case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
					apperrors.WriteError(w, requestID, apperrors.InvalidToken())
				case errors.Is(err, db.ErrUserNotFound):
					// Token outlived its subject
					apperrors.WriteError(w, requestID, apperrors.Unauthenticated("User not found. Please log in again."))
				default:
					apperrors.WriteError(w, requestID, err)
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, userCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the session like RequireAuth but never rejects:
// absence or invalidity leaves the request anonymous and downstream logic may
// branch on presence.
func OptionalAuth(s *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, err := s.resolveUser(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, userCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveUser extracts the token from the cookie, verifies it, and loads the
// subject. It short-circuits before any store access when the token is absent
// or structurally invalid.
func (s *Service) resolveUser(r *http.Request) (*UserContext, error) {
	cookie, err := r.Cookie(TokenCookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoToken
	}

	userID, err := s.VerifyToken(cookie.Value)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		return nil, err
	}

	return &UserContext{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

// GetUserFromContext returns the resolved identity, or nil for anonymous
// requests.
func GetUserFromContext(ctx context.Context) *UserContext {
	user, ok := ctx.Value(UserContextKey).(*UserContext)
	if !ok {
		return nil
	}
	return user
}
