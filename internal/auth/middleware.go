package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/xid"
)

// Cookie names.
const (
	TokenCookie   = "token"
	VisitorCookie = "visitor"
)

// visitorTTL keeps an anonymous browser's identity for a year.
const visitorTTL = 365 * 24 * time.Hour

// contextKey is private so no other package can read or shadow these values.
type contextKey string

const (
	userIDKey    contextKey = "userID"
	visitorIDKey contextKey = "visitorID"
)

// RequireAuth rejects requests without a valid session token with 401 and
// puts the user ID in the context of the rest.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"Please sign in to continue."}` + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuth puts the user ID in the context when a valid token is present
// and lets anonymous requests through untouched.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil {
				r = r.WithContext(WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Visitor makes sure every browser carries a visitor ID. A request without
// the cookie gets a fresh xid, set on the response and visible to handlers
// through VisitorIDFromContext on this same request.
func Visitor(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(VisitorCookie); err == nil {
				if parsed, err := xid.FromString(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = xid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(visitorTTL.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), visitorIDKey, id)))
		})
	}
}

// WithUserID returns ctx carrying userID. Tests use it to skip the cookie.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithVisitorID returns ctx carrying visitorID.
func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, visitorIDKey, visitorID)
}

// UserIDFromContext returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// VisitorIDFromContext returns the visitor ID set by Visitor.
func VisitorIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(visitorIDKey).(string)
	return id, ok && id != ""
}

// SetSessionCookie stores a freshly issued token. Its Max-Age matches the
// token's own lifetime.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the token. The token itself
// stays valid until it expires; without the cookie it is never sent.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(TokenCookie)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
