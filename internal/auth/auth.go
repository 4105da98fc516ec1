// internal/auth/auth.go
//
// Cookie-based authentication.
//   - HS256 JWT in an httpOnly cookie for logged-in users.
//   - An anonymous ID cookie so guests own their games.
//   - Optional middleware that attaches the user to the request context.

package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/internal/config"
)

const anonCookieName = "hangman_anon"

var ErrInvalidToken = errors.New("invalid token")

// Service bundles account storage, token signing and cookie handling.
type Service struct {
	db     *sql.DB
	cfg    config.AuthConfig
	secure bool
}

func NewService(db *sql.DB, cfg config.AuthConfig, production bool) *Service {
	return &Service{db: db, cfg: cfg, secure: production}
}

// AuthUser is placed into request context by the middleware.
type AuthUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ctxUserKey struct{}

// UserFrom returns the authenticated user, or nil for guests.
func UserFrom(ctx context.Context) *AuthUser {
	u, _ := ctx.Value(ctxUserKey{}).(*AuthUser)
	return u
}

// WithUser returns ctx carrying u.
func WithUser(ctx context.Context, u *AuthUser) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, u)
}

// ------------------------------ JWT & cookies ------------------------------

// SignToken creates an HS256 JWT with id/username and the configured expiry.
func (s *Service) SignToken(id, username string) (string, time.Time, error) {
	exp := time.Now().Add(s.cfg.JWTExpires)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      time.Now().Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// ParseToken verifies a token and returns its subject.
func (s *Service) ParseToken(tok string) (*AuthUser, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return nil, ErrInvalidToken
	}
	return &AuthUser{ID: id, Username: username}, nil
}

func (s *Service) sameSite() http.SameSite {
	if s.secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// SetAuthCookie writes the auth token cookie.
func (s *Service) SetAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: s.sameSite(),
		Expires:  exp,
	})
}

// ClearAuthCookie deletes the auth token cookie.
func (s *Service) ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: s.sameSite(),
		MaxAge:   -1,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Service) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// EnsureAnonID returns an existing anon cookie or sets a new one.
func (s *Service) EnsureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: s.sameSite(),
		Expires:  time.Now().Add(180 * 24 * time.Hour),
	})
	// later handlers in the same request read it back through r.Cookie
	r.AddCookie(&http.Cookie{Name: anonCookieName, Value: id})
	return id
}

// AnonID returns the anonymous cookie value without setting one.
func AnonID(r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- middleware -----------------------------------

// Optional decorates requests with user context if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Service) Optional() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := s.bearerOrCookie(r); tok != "" {
				if u, err := s.ParseToken(tok); err == nil {
					if _, err := s.FindUserByID(r.Context(), u.ID); err == nil {
						r = r.WithContext(WithUser(r.Context(), u))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require enforces a valid JWT and injects AuthUser into request context.
func (s *Service) Require() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := s.bearerOrCookie(r)
			if tok == "" {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			u, err := s.ParseToken(tok)
			if err != nil {
				http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
				return
			}
			// Ensure user still exists
			if _, err := s.FindUserByID(r.Context(), u.ID); err != nil {
				log.Debug().Err(err).Str("user", u.ID).Msg("token for missing user")
				http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
