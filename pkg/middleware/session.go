package middleware

import (
	"context"
	"net/http"

	apperrors "schoolbook/pkg/errors"
	"schoolbook/pkg/logger"
	"schoolbook/pkg/model"
)

const (
	UserIDHeader = "X-User-ID"

	sessionKey contextKey = "session"
)

// UserResolver looks up a user by id; *catalog.Catalog implements it.
type UserResolver interface {
	User(id string) (model.User, bool)
}

// Session identifies the caller from the X-User-ID header. It does not
// authenticate: whoever names a known user acts as that user.
func Session(users UserResolver, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(UserIDHeader)
			if userID == "" {
				_ = apperrors.WriteError(w, apperrors.Unauthorized("X-User-ID header is required"))
				return
			}

			user, ok := users.User(userID)
			if !ok {
				log.Warn("Unknown user in session header",
					"request_id", RequestIDFromContext(r.Context()),
					"user_id", userID,
					"path", r.URL.Path,
				)
				_ = apperrors.WriteError(w, apperrors.Unauthorized("Unknown user"))
				return
			}

			ctx := WithSession(r.Context(), model.Session{User: user})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithSession(ctx context.Context, session model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

func SessionFromContext(ctx context.Context) (model.Session, bool) {
	session, ok := ctx.Value(sessionKey).(model.Session)
	return session, ok
}
