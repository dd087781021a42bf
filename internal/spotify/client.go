package spotify

import (
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplayd/internal/models"
	"github.com/desertthunder/nowplayd/internal/shared"
	"github.com/desertthunder/nowplayd/internal/source"
	"golang.org/x/time/rate"
)

const (
	authURL     = "https://accounts.spotify.com/authorize"
	tokenURL    = "https://accounts.spotify.com/api/token"
	playerURL   = "https://api.spotify.com/v1/me/player"
	pausePath   = "/pause"
	playPath    = "/play"
	nextPath    = "/next"
	prevPath    = "/previous"
	volumePath  = "/volume"
	defaultWait = time.Second
)

// DefaultCredentials is a precomputed "id:secret" credential blob compiled
// in via -ldflags, used when no client credentials are configured.
var DefaultCredentials string

// Config contains the construction-time parameters of the client. The
// surrounding system rebuilds it from persisted settings and hands it back
// through [Client.Configure] whenever configuration changes.
type Config struct {
	ClientID       string
	ClientSecret   string
	RedirectURI    string
	RequestTimeout time.Duration

	// ResumeFromStart preserves the original behavior of restarting the
	// track from position zero when resuming from pause.
	ResumeFromStart bool
}

// TokenState is the OAuth token lifecycle state owned by the client.
// A refresh either replaces access token and expiry atomically or leaves
// the state unchanged.
type TokenState struct {
	AccessToken  string
	RefreshToken string
	AuthCode     string
	ExpiresAt    int64
	LoggedIn     bool
}

// PersistFunc receives the full token state after every token mutation so
// the configuration collaborator can store it durably.
type PersistFunc func(TokenState) error

// Client is a polling Spotify playback client. It implements
// [source.Source].
//
// The mutex guards token state, the playback record, and the poll state;
// configuration reload paths share it through [Client.Configure] and
// [Client.SetTokens]. BackoffState carries its own lock so detached command
// goroutines never contend with consumers reading the record.
type Client struct {
	mu      sync.Mutex
	logger  *log.Logger
	http    *http.Client
	cfg     Config
	creds   string
	token   TokenState
	backoff *BackoffState
	record  models.PlaybackRecord
	state   PollState
	caps    source.Capability
	persist PersistFunc
	limiter *rate.Limiter

	// endpoint bases, overridable in tests
	apiURL      string
	tokenURL    string
	authBaseURL string
}

// New creates a client with the fixed capability set and an idle state.
// persist may be nil when the caller handles persistence elsewhere.
func New(cfg Config, logger *log.Logger, persist PersistFunc) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultWait
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	c := &Client{
		logger:  logger,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		cfg:     cfg,
		backoff: NewBackoffState(),
		state:   StateIdle,
		caps: source.CapNextSong | source.CapPrevSong | source.CapPlayPause |
			source.CapStopSong | source.CapVolumeUp | source.CapVolumeDown,
		persist:     persist,
		limiter:     rate.NewLimiter(rate.Limit(2), 4),
		apiURL:      playerURL,
		tokenURL:    tokenURL,
		authBaseURL: authURL,
	}
	c.creds = buildCredentials(cfg)
	return c
}

// buildCredentials derives the Basic authorization blob from the configured
// client id and secret, falling back to the compiled-in credential.
func buildCredentials(cfg Config) string {
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		return base64.StdEncoding.EncodeToString([]byte(cfg.ClientID + ":" + cfg.ClientSecret))
	}
	if DefaultCredentials != "" {
		return base64.StdEncoding.EncodeToString([]byte(DefaultCredentials))
	}
	return ""
}

// ID returns the registry identifier.
func (c *Client) ID() string { return "spotify" }

// Name returns the human-readable source name.
func (c *Client) Name() string { return "Spotify" }

// Capabilities returns the fixed capability set declared at construction.
func (c *Client) Capabilities() source.Capability { return c.caps }

// Configure replaces the client configuration and rebuilds credentials.
// Shares the client lock with the poll and record paths, so a reload never
// interleaves with a running cycle.
func (c *Client) Configure(cfg Config) {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultWait
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.creds = buildCredentials(cfg)
	c.http.Timeout = cfg.RequestTimeout
}

// SetTokens installs persisted token state, typically at startup or after a
// configuration reload.
func (c *Client) SetTokens(t TokenState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = t
}

// TokenSnapshot returns a copy of the current token state.
func (c *Client) TokenSnapshot() TokenState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// LoggedIn reports whether the client holds a usable session.
func (c *Client) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token.LoggedIn
}

// Record returns a copy of the current playback record. Consumers only ever
// see copies; the poller is the sole writer.
func (c *Client) Record() models.PlaybackRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec := c.record
	rec.Artists = append([]string(nil), c.record.Artists...)
	return rec
}

// State returns the poll state reached by the most recent cycle.
func (c *Client) State() PollState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Backoff exposes the backoff controller, primarily for status reporting.
func (c *Client) Backoff() *BackoffState { return c.backoff }

// persistLocked hands the current token state to the persistence callback.
// Callers must hold the client lock.
func (c *Client) persistLocked() {
	if c.persist == nil {
		return
	}
	if err := c.persist(c.token); err != nil {
		c.logger.Errorf("failed to persist token state: %v", err)
	}
}
