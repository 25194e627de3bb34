package wix

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// expirySkew refreshes tokens slightly before Wix would reject them.
const expirySkew = 30 * time.Second

// Tokens is an anonymous visitor session issued by the Wix OAuth endpoint.
type Tokens struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func (t Tokens) Expired(now time.Time) bool {
	return t.AccessToken == "" || !now.Before(t.ExpiresAt.Add(-expirySkew))
}

type tokensKey struct{}

// WithTokens attaches a visitor session to ctx for every Wix call made with it.
func WithTokens(ctx context.Context, tokens Tokens) context.Context {
	return context.WithValue(ctx, tokensKey{}, tokens)
}

func TokensFromContext(ctx context.Context) (Tokens, bool) {
	tokens, ok := ctx.Value(tokensKey{}).(Tokens)
	return tokens, ok
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// AnonymousTokens mints a new visitor session.
// docs https://dev.wix.com/docs/rest/app-management/oauth-2/create-access-token
func (c *Client) AnonymousTokens(ctx context.Context) (Tokens, error) {
	if c.clientID == "" {
		return Tokens{}, errors.New("client ID is required for visitor tokens")
	}
	return c.token(ctx, "anonymous token", map[string]string{
		"clientId":  c.clientID,
		"grantType": "anonymous",
	})
}

// RefreshTokens exchanges a refresh token for a fresh access token.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (Tokens, error) {
	if c.clientID == "" {
		return Tokens{}, errors.New("client ID is required for visitor tokens")
	}
	if refreshToken == "" {
		return Tokens{}, errors.New("refresh token is required")
	}
	return c.token(ctx, "refresh token", map[string]string{
		"clientId":      c.clientID,
		"grantType":     "refresh_token",
		"refresh_token": refreshToken,
	})
}

func (c *Client) token(ctx context.Context, op string, body map[string]string) (Tokens, error) {
	var resp tokenResponse
	if err := c.send(ctx, op, http.MethodPost, "/oauth2/token", body, &resp, false); err != nil {
		return Tokens{}, err
	}
	if resp.AccessToken == "" {
		return Tokens{}, fmt.Errorf("%s: response carried no access token", op)
	}
	return Tokens{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}
