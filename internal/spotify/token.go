package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/nowplayd/internal/shared"
	"golang.org/x/oauth2"
)

// scopes required to read playback state and issue player commands.
var oauthScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
}

// tokenResponse is the token endpoint's JSON reply. Pointer fields
// distinguish absent values from zero values.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        *int64 `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// AuthURL returns the authorization URL the user visits to grant access.
// The state token should be cryptographically random for CSRF protection.
func (c *Client) AuthURL(state string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	conf := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		RedirectURL:  c.cfg.RedirectURI,
		Scopes:       oauthScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.authBaseURL,
			TokenURL: c.tokenURL,
		},
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// TokenExpired reports whether the stored access token is past its expiry.
func (c *Client) TokenExpired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokenExpiredLocked()
}

func (c *Client) tokenExpiredLocked() bool {
	return time.Now().Unix() > c.token.ExpiresAt
}

// RefreshToken exchanges the stored refresh token for a new access token.
// Returns the raw (redacted) response body as a diagnostic log alongside any
// error. State is persisted regardless of outcome; on failure the token pair
// is left unchanged and the logged-in flag drops.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshTokenLocked(ctx)
}

func (c *Client) refreshTokenLocked(ctx context.Context) (string, error) {
	defer c.persistLocked()

	if c.token.RefreshToken == "" {
		c.logger.Error("refresh token is empty")
		return "", shared.ErrNoRefreshToken
	}

	form := "grant_type=refresh_token&refresh_token=" + url.QueryEscape(c.token.RefreshToken)
	body, err := c.requestToken(ctx, form)
	if err != nil {
		c.token.LoggedIn = false
		c.logger.Errorf("couldn't refresh token: %v", err)
		return "", err
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.token.LoggedIn = false
		c.logger.Errorf("couldn't parse token response: %v", err)
		return string(body), fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	if resp.AccessToken == "" || resp.ExpiresIn == nil {
		c.token.LoggedIn = false
		if resp.Error != "" {
			c.logger.Errorf("received error from spotify: %s %s", resp.Error, resp.ErrorDescription)
		} else {
			c.logger.Error("token response is missing access token or expiry")
		}
		return string(body), fmt.Errorf("%w: token refresh rejected", shared.ErrAuthFailed)
	}

	c.token.AccessToken = resp.AccessToken
	c.token.ExpiresAt = time.Now().Unix() + *resp.ExpiresIn
	c.token.LoggedIn = true

	// Refreshing can return a new refresh token
	if resp.RefreshToken != "" {
		c.logger.Info("received a new refresh token")
		c.token.RefreshToken = resp.RefreshToken
	}

	c.logger.Info("successfully renewed access token")
	return string(body), nil
}

// ExchangeAuthCode performs the one-time exchange of an authorization code
// for the initial token pair. Unlike a refresh, both an access token and a
// refresh token must be present for the exchange to succeed.
func (c *Client) ExchangeAuthCode(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.persistLocked()

	if c.token.AuthCode == "" {
		c.logger.Error("authorization code is empty")
		return "", shared.ErrNoAuthCode
	}

	form := "grant_type=authorization_code&code=" + url.QueryEscape(c.token.AuthCode) +
		"&redirect_uri=" + url.QueryEscape(c.cfg.RedirectURI)
	body, err := c.requestToken(ctx, form)
	if err != nil {
		c.token.LoggedIn = false
		c.logger.Errorf("couldn't exchange authorization code: %v", err)
		return "", err
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.token.LoggedIn = false
		c.logger.Errorf("couldn't parse token response: %v", err)
		return string(body), fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" || resp.ExpiresIn == nil {
		c.token.LoggedIn = false
		if resp.Error != "" {
			c.logger.Errorf("received error from spotify: %s %s", resp.Error, resp.ErrorDescription)
		} else {
			c.logger.Error("token response is missing access token, refresh token, or expiry")
		}
		return string(body), fmt.Errorf("%w: authorization code exchange rejected", shared.ErrAuthFailed)
	}

	c.token.AccessToken = resp.AccessToken
	c.token.RefreshToken = resp.RefreshToken
	c.token.ExpiresAt = time.Now().Unix() + *resp.ExpiresIn
	c.token.AuthCode = ""
	c.token.LoggedIn = true

	c.logger.Info("successfully logged in")
	return string(body), nil
}

// requestToken posts a form-encoded grant request to the token endpoint with
// Basic credentials. The raw response body is returned for the caller to
// interpret; a redacted copy is logged for diagnostics.
func (c *Client) requestToken(ctx context.Context, form string) ([]byte, error) {
	if form == "" || c.creds == "" {
		return nil, fmt.Errorf("%w: cannot request token without credentials", shared.ErrMissingCredentials)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Authorization", "Basic "+c.creds)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}

	if redacted := redactTokens(body); redacted != "" {
		c.logger.Infof("spotify token response: %s", redacted)
	} else {
		c.logger.Errorf("couldn't parse token response to json: %s", body)
	}

	return body, nil
}

// redactTokens replaces token fields in a raw JSON body before logging.
// Returns an empty string when the body isn't a JSON object.
func redactTokens(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}

	for _, key := range []string{"access_token", "refresh_token"} {
		if _, ok := obj[key].(string); ok {
			obj[key] = "REDACTED"
		}
	}

	out, err := json.Marshal(obj)
	if err != nil {
		return ""
	}
	return string(out)
}

// SetAuthCode stores a freshly captured authorization code ahead of the
// exchange.
func (c *Client) SetAuthCode(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token.AuthCode = code
}
