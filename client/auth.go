package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ledgerline/erpclient/tokenstore"
)

// Auth endpoints.
const (
	loginPath    = APIPrefix + "/auth/login"
	refreshPath  = APIPrefix + "/auth/refresh"
	logoutPath   = APIPrefix + "/auth/logout"
	registerPath = APIPrefix + "/auth/register"
)

// DefaultTokenLifetime is assumed when a token response carries no
// expires_in and the access token has no readable exp claim. The backend
// does not guarantee this value; it is a documented fallback, not a
// contract.
const DefaultTokenLifetime = time.Hour

// ErrNoRefreshToken is returned when a refresh is attempted without a
// stored refresh token.
var ErrNoRefreshToken = errors.New("no refresh token available")

// Session is a token response from the login, register or refresh endpoints.
type Session struct {
	AccessToken  string          `json:"access"`
	RefreshToken string          `json:"refresh"`
	ExpiresIn    int64           `json:"expires_in,omitempty"`
	User         json.RawMessage `json:"user,omitempty"`
}

// Login authenticates with email and password, persisting the returned
// credential pair on success.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	return c.sessionCall(ctx, loginPath, body)
}

// Register creates an account and persists the returned credential pair.
func (c *Client) Register(ctx context.Context, email, password, name string) (*Session, error) {
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
	return c.sessionCall(ctx, registerPath, body)
}

// sessionCall posts to an auth endpoint and stores the resulting session.
// Auth endpoints never participate in the 401-refresh cycle.
func (c *Client) sessionCall(ctx context.Context, path string, body []byte) (*Session, error) {
	res := c.attempt(ctx, http.MethodPost, path, body, "")
	if res.state != stateOK {
		return nil, c.errors.Normalize(res.failure(), "")
	}

	var session Session
	if err := json.Unmarshal(res.body, &session); err != nil {
		return nil, c.errors.Normalize(fmt.Errorf("decode session: %w", err), "")
	}
	c.storeSession(&session)
	return &session, nil
}

// Logout calls the logout endpoint best-effort and clears tokens
// unconditionally, even when the call fails.
func (c *Client) Logout(ctx context.Context) {
	token := c.tokens.AccessToken()
	if token != "" {
		res := c.attempt(ctx, http.MethodPost, logoutPath, nil, token)
		if res.state != stateOK {
			c.log.Debug("logout endpoint failed; clearing tokens anyway")
		}
	}
	c.tokens.Clear()
}

// IsAuthenticated reports whether a usable (present and unexpired) access
// token is held.
func (c *Client) IsAuthenticated() bool {
	return c.tokens.AccessToken() != "" && !c.tokens.Expired()
}

// refresh exchanges the stored refresh token for a new credential pair.
// Concurrent callers converge on one network call: all 401s observed while
// a refresh is in flight await the same outcome and replay with the same
// new token. The flight is forgotten when it settles, success or failure.
func (c *Client) refresh(ctx context.Context) (string, error) {
	const flightKey = "token-refresh"
	v, err, _ := c.flight.Do(flightKey, func() (any, error) {
		defer c.flight.Forget(flightKey)

		refreshToken := c.tokens.RefreshToken()
		if refreshToken == "" {
			return nil, ErrNoRefreshToken
		}

		c.metrics.refresh()
		body, _ := json.Marshal(map[string]string{"refresh": refreshToken})
		res := c.attempt(ctx, http.MethodPost, refreshPath, body, "")
		if res.state != stateOK {
			return nil, res.failure()
		}

		var session Session
		if err := json.Unmarshal(res.body, &session); err != nil {
			return nil, fmt.Errorf("decode refresh response: %w", err)
		}
		c.storeSession(&session)
		c.log.Info("access token refreshed")
		return session.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// storeSession persists a credential pair atomically. Lifetime comes from
// expires_in, else the access token's exp claim, else DefaultTokenLifetime.
func (c *Client) storeSession(s *Session) {
	lifetime := DefaultTokenLifetime
	switch {
	case s.ExpiresIn > 0:
		lifetime = time.Duration(s.ExpiresIn) * time.Second
	default:
		if exp, ok := tokenstore.ExpiryFromJWT(s.AccessToken); ok {
			lifetime = time.Until(exp)
		} else {
			c.log.Warn("token response carries no expiry; assuming default lifetime",
				"lifetime", DefaultTokenLifetime.String())
		}
	}
	c.tokens.SetTokens(s.AccessToken, s.RefreshToken, lifetime)
}

// forceLogout clears tokens and performs the client-side redirect to the
// login route. Observable through the injected Navigate function.
func (c *Client) forceLogout(reason string) {
	c.metrics.forcedLogout()
	c.log.Warn("forcing logout", "reason", reason)
	c.tokens.Clear()
	if c.navigate != nil {
		c.navigate(c.loginRoute)
	}
}
