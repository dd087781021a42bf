package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/nowplayd/internal/shared"
)

// tokenServer serves a canned token endpoint response and records the
// request it received.
func tokenServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request, *string) {
	t.Helper()

	var captured http.Request
	var form string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		captured.Header = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		form = string(raw)

		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured, &form
}

func TestAuthURL(t *testing.T) {
	c := newTestClient(t, nil)
	raw := c.AuthURL("state-token")

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("AuthURL returned unparseable URL: %v", err)
	}

	q := parsed.Query()
	checks := map[string]string{
		"client_id":     "test-client-id",
		"state":         "state-token",
		"redirect_uri":  "http://127.0.0.1:1608/callback",
		"response_type": "code",
		"access_type":   "offline",
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("query %s = %q, want %q", key, got, want)
		}
	}
	if scope := q.Get("scope"); !strings.Contains(scope, "user-read-playback-state") {
		t.Errorf("scope %q missing read scope", scope)
	}
}

func TestRefreshToken(t *testing.T) {
	t.Run("empty refresh token fails without a request", func(t *testing.T) {
		persisted := 0
		c := newTestClient(t, func(TokenState) error { persisted++; return nil })
		c.SetTokens(TokenState{AccessToken: "stale", LoggedIn: true})

		_, err := c.RefreshToken(context.Background())
		if !errors.Is(err, shared.ErrNoRefreshToken) {
			t.Fatalf("err = %v, want ErrNoRefreshToken", err)
		}

		snap := c.TokenSnapshot()
		if snap.AccessToken != "stale" || !snap.LoggedIn {
			t.Error("token state should be untouched when no refresh token is stored")
		}
		if persisted != 1 {
			t.Errorf("persist calls = %d, want 1", persisted)
		}
	})

	t.Run("success replaces access token and expiry", func(t *testing.T) {
		srv, req, form := tokenServer(t, http.StatusOK,
			`{"access_token":"new-access","expires_in":3600}`)

		persisted := 0
		c := newTestClient(t, func(TokenState) error { persisted++; return nil })
		c.tokenURL = srv.URL
		c.SetTokens(loggedInTokens())

		before := time.Now().Unix()
		if _, err := c.RefreshToken(context.Background()); err != nil {
			t.Fatalf("RefreshToken: %v", err)
		}

		if got := req.Header.Get("Authorization"); !strings.HasPrefix(got, "Basic ") {
			t.Errorf("Authorization = %q, want Basic credentials", got)
		}
		if !strings.Contains(*form, "grant_type=refresh_token") {
			t.Errorf("form = %q, missing grant type", *form)
		}

		snap := c.TokenSnapshot()
		if snap.AccessToken != "new-access" {
			t.Errorf("access token = %q, want new-access", snap.AccessToken)
		}
		if snap.RefreshToken != "refresh-token" {
			t.Error("refresh token should be kept when the response omits one")
		}
		if snap.ExpiresAt < before+3600 {
			t.Errorf("expiry = %d, want at least %d", snap.ExpiresAt, before+3600)
		}
		if !snap.LoggedIn {
			t.Error("expected logged in after successful refresh")
		}
		if persisted != 1 {
			t.Errorf("persist calls = %d, want 1", persisted)
		}
	})

	t.Run("adopts a rotated refresh token", func(t *testing.T) {
		srv, _, _ := tokenServer(t, http.StatusOK,
			`{"access_token":"new-access","refresh_token":"rotated","expires_in":3600}`)

		c := newTestClient(t, nil)
		c.tokenURL = srv.URL
		c.SetTokens(loggedInTokens())

		if _, err := c.RefreshToken(context.Background()); err != nil {
			t.Fatalf("RefreshToken: %v", err)
		}
		if snap := c.TokenSnapshot(); snap.RefreshToken != "rotated" {
			t.Errorf("refresh token = %q, want rotated", snap.RefreshToken)
		}
	})

	t.Run("API error drops the session but keeps the token pair", func(t *testing.T) {
		srv, _, _ := tokenServer(t, http.StatusBadRequest,
			`{"error":"invalid_grant","error_description":"Refresh token revoked"}`)

		c := newTestClient(t, nil)
		c.tokenURL = srv.URL
		c.SetTokens(loggedInTokens())

		body, err := c.RefreshToken(context.Background())
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("err = %v, want ErrAuthFailed", err)
		}
		if !strings.Contains(body, "invalid_grant") {
			t.Errorf("diagnostic body = %q, want raw response", body)
		}

		snap := c.TokenSnapshot()
		if snap.LoggedIn {
			t.Error("expected logged-in flag to drop")
		}
		if snap.AccessToken != "access-token" || snap.RefreshToken != "refresh-token" {
			t.Error("token pair should be unchanged on a rejected refresh")
		}
	})

	t.Run("malformed body yields malformed response error", func(t *testing.T) {
		srv, _, _ := tokenServer(t, http.StatusOK, "<html>not json</html>")

		c := newTestClient(t, nil)
		c.tokenURL = srv.URL
		c.SetTokens(loggedInTokens())

		if _, err := c.RefreshToken(context.Background()); !errors.Is(err, shared.ErrMalformedResponse) {
			t.Fatalf("err = %v, want ErrMalformedResponse", err)
		}
	})
}

func TestExchangeAuthCode(t *testing.T) {
	t.Run("fails without a stored code", func(t *testing.T) {
		c := newTestClient(t, nil)
		if _, err := c.ExchangeAuthCode(context.Background()); !errors.Is(err, shared.ErrNoAuthCode) {
			t.Fatalf("err = %v, want ErrNoAuthCode", err)
		}
	})

	t.Run("success installs the full token pair and clears the code", func(t *testing.T) {
		srv, _, form := tokenServer(t, http.StatusOK,
			`{"access_token":"first-access","refresh_token":"first-refresh","expires_in":3600}`)

		c := newTestClient(t, nil)
		c.tokenURL = srv.URL
		c.SetAuthCode("the-code")

		if _, err := c.ExchangeAuthCode(context.Background()); err != nil {
			t.Fatalf("ExchangeAuthCode: %v", err)
		}

		if !strings.Contains(*form, "grant_type=authorization_code") || !strings.Contains(*form, "code=the-code") {
			t.Errorf("form = %q, missing grant or code", *form)
		}

		snap := c.TokenSnapshot()
		if snap.AccessToken != "first-access" || snap.RefreshToken != "first-refresh" {
			t.Errorf("token pair = %q/%q", snap.AccessToken, snap.RefreshToken)
		}
		if snap.AuthCode != "" {
			t.Error("authorization code should be cleared after exchange")
		}
		if !snap.LoggedIn {
			t.Error("expected logged in after exchange")
		}
	})

	t.Run("rejects a response missing the refresh token", func(t *testing.T) {
		srv, _, _ := tokenServer(t, http.StatusOK,
			`{"access_token":"first-access","expires_in":3600}`)

		c := newTestClient(t, nil)
		c.tokenURL = srv.URL
		c.SetAuthCode("the-code")

		if _, err := c.ExchangeAuthCode(context.Background()); !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("err = %v, want ErrAuthFailed", err)
		}
		if c.LoggedIn() {
			t.Error("expected not logged in after rejected exchange")
		}
	})
}

func TestRedactTokens(t *testing.T) {
	t.Run("replaces token fields", func(t *testing.T) {
		got := redactTokens([]byte(`{"access_token":"secret","refresh_token":"secret2","expires_in":3600}`))
		if strings.Contains(got, "secret") {
			t.Errorf("redacted body still contains a token: %s", got)
		}
		if !strings.Contains(got, "REDACTED") {
			t.Errorf("redacted body missing marker: %s", got)
		}
	})

	t.Run("non-object body yields empty string", func(t *testing.T) {
		if got := redactTokens([]byte("not json")); got != "" {
			t.Errorf("redactTokens = %q, want empty", got)
		}
	})
}
