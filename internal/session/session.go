// Package session keeps the anonymous Wix visitor session in a cookie and
// hands the tokens to downstream handlers through the request context.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/wix"
)

// cookieMaxAge outlives the access token; the refresh token renews it.
const cookieMaxAge = 30 * 24 * time.Hour

// Issuer mints and renews visitor tokens.
type Issuer interface {
	AnonymousTokens(ctx context.Context) (wix.Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (wix.Tokens, error)
}

var (
	_ Issuer = (*wix.Client)(nil)
	_ Issuer = (*wix.Mock)(nil)
)

type Manager struct {
	issuer     Issuer
	cookieName string
	secure     bool
	now        func() time.Time
}

func NewManager(issuer Issuer, cfg config.SessionConfig) *Manager {
	name := cfg.CookieName
	if name == "" {
		name = "wixSession"
	}
	return &Manager{
		issuer:     issuer,
		cookieName: name,
		secure:     cfg.SecureCookie,
		now:        time.Now,
	}
}

// Encode serializes tokens into a cookie value.
func Encode(tokens wix.Tokens) (string, error) {
	raw, err := json.Marshal(tokens)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode. A value without an access token is rejected.
func Decode(value string) (wix.Tokens, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return wix.Tokens{}, fmt.Errorf("decode session: %w", err)
	}
	var tokens wix.Tokens
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return wix.Tokens{}, fmt.Errorf("decode session: %w", err)
	}
	if tokens.AccessToken == "" {
		return wix.Tokens{}, errors.New("decode session: missing access token")
	}
	return tokens, nil
}

// Middleware makes sure every request carries a visitor session. A valid
// cookie is reused, an expired one is refreshed and anything else gets a new
// anonymous session. When the token endpoint is unavailable the request goes
// on without one.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tokens, fresh, err := m.tokens(r)
		if err != nil {
			slog.WarnContext(ctx, "continuing without visitor session", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if fresh {
			if err := m.setCookie(w, tokens); err != nil {
				slog.ErrorContext(ctx, "failed to write session cookie", "error", err)
			}
		}
		next.ServeHTTP(w, r.WithContext(wix.WithTokens(ctx, tokens)))
	})
}

// tokens reports whether the returned tokens differ from the request cookie.
func (m *Manager) tokens(r *http.Request) (wix.Tokens, bool, error) {
	ctx := r.Context()
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		tokens, err := Decode(cookie.Value)
		switch {
		case err != nil:
			slog.InfoContext(ctx, "discarding unreadable session cookie", "error", err)
		case !tokens.Expired(m.now()):
			return tokens, false, nil
		case tokens.RefreshToken != "":
			refreshed, err := m.issuer.RefreshTokens(ctx, tokens.RefreshToken)
			if err == nil {
				return refreshed, true, nil
			}
			slog.WarnContext(ctx, "failed to refresh visitor session", "error", err)
		}
	}

	tokens, err := m.issuer.AnonymousTokens(ctx)
	if err != nil {
		return wix.Tokens{}, false, fmt.Errorf("mint visitor session: %w", err)
	}
	return tokens, true, nil
}

func (m *Manager) setCookie(w http.ResponseWriter, tokens wix.Tokens) error {
	value, err := Encode(tokens)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
