package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/utafrali/shopfront/internal/domain"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
	"github.com/utafrali/shopfront/pkg/middleware"
)

// CookieName is the name of the session cookie.
const CookieName = "token"

// Session is an issued session token together with the cookie carrying it.
type Session struct {
	Token  string
	Cookie *http.Cookie
	Claims *Claims
}

// SessionManager issues, validates and revokes session tokens.
type SessionManager struct {
	jwt         *JWTManager
	revocations RevocationStore
	cookieDays  int
	secure      bool
	now         func() time.Time
}

// NewSessionManager creates a session manager. cookieDays is the cookie
// lifetime in days; secure marks cookies Secure and is enabled in production.
// A nil revocations store disables logout revocation.
func NewSessionManager(jwt *JWTManager, revocations RevocationStore, cookieDays int, secure bool) *SessionManager {
	return &SessionManager{
		jwt:         jwt,
		revocations: revocations,
		cookieDays:  cookieDays,
		secure:      secure,
		now:         time.Now,
	}
}

// Issue signs a token for user and builds the session cookie.
func (m *SessionManager) Issue(user *domain.User) (*Session, error) {
	token, claims, err := m.jwt.Generate(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &Session{
		Token:  token,
		Claims: claims,
		Cookie: &http.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			Expires:  m.now().Add(time.Duration(m.cookieDays) * day),
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteStrictMode,
		},
	}, nil
}

// ClearCookie returns a cookie that removes the session cookie.
func (m *SessionManager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  m.now(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Validate checks a raw token and its revocation state. It satisfies
// middleware.TokenValidator.
func (m *SessionManager) Validate(ctx context.Context, token string) (*middleware.Claims, error) {
	claims, err := m.jwt.Validate(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	if m.revocations != nil {
		revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperrors.ServiceUnavailable("session store unavailable")
		}
		if revoked {
			return nil, apperrors.Unauthorized("session has been logged out")
		}
	}

	out := &middleware.Claims{
		UserID:  claims.UserID,
		Role:    claims.Role,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// Revoke invalidates the session described by claims until it expires.
func (m *SessionManager) Revoke(ctx context.Context, claims *middleware.Claims) error {
	if m.revocations == nil || claims == nil || claims.TokenID == "" {
		return nil
	}
	return m.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}
