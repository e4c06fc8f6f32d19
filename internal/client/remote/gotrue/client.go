// Package gotrue is an HTTP client for the hosted auth service (GoTrue API).
//
// The client holds the current session, refreshes it when the access token
// expires and publishes every change on Events.
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote"
	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/dmitrijs2005/expensesheets/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultLeeway is how early before expiry a token is considered stale.
const DefaultLeeway = 30 * time.Second

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  logging.Logger
	leeway  time.Duration
	now     func() time.Time

	mu      sync.Mutex
	session *models.Session
	events  chan remote.SessionEvent

	// refreshes shares one token exchange between concurrent callers
	// holding the same refresh token.
	refreshes singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithLeeway(d time.Duration) Option {
	return func(c *Client) { c.leeway = d }
}

// New returns a client for the auth API rooted at baseURL (for instance
// https://project.example.co/auth/v1). apiKey is sent as the apikey header.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logging.Discard(),
		leeway:  DefaultLeeway,
		now:     time.Now,
		events:  make(chan remote.SessionEvent, 16),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ remote.Auth = (*Client)(nil)
var _ remote.TokenSource = (*Client)(nil)

func (c *Client) Events() <-chan remote.SessionEvent {
	return c.events
}

func (c *Client) SetSession(s *models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

func (c *Client) current() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	var tr tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", body, &tr); err != nil {
		return nil, err
	}

	s, err := c.toSession(&tr)
	if err != nil {
		return nil, err
	}
	c.store(s, remote.EventSignedIn)
	return s, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	var tr tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/signup", "", body, &tr); err != nil {
		return nil, err
	}

	// With email confirmation enabled the service answers with the bare user.
	if tr.AccessToken == "" {
		return nil, nil
	}

	s, err := c.toSession(&tr)
	if err != nil {
		return nil, err
	}
	c.store(s, remote.EventSignedIn)
	return s, nil
}

// SignOut revokes the refresh token remotely and always clears the local
// session, even when the remote call fails.
func (c *Client) SignOut(ctx context.Context) error {
	s := c.current()
	if s == nil {
		return nil
	}

	err := c.do(ctx, http.MethodPost, "/logout", s.AccessToken, nil, nil)
	c.store(nil, remote.EventSignedOut)

	if err != nil && !errors.Is(err, common.ErrUnauthorized) {
		return err
	}
	return nil
}

// GetSession revalidates the current session with the service. An expired
// access token is refreshed first; a token the service rejects is refreshed
// once. When no valid session can be obtained the local one is dropped and
// (nil, nil) is returned.
func (c *Client) GetSession(ctx context.Context) (*models.Session, error) {
	s := c.current()
	if s == nil {
		return nil, nil
	}

	if s.Expired(c.now(), c.leeway) {
		return c.refreshOrDrop(ctx, s)
	}

	var u userResponse
	err := c.do(ctx, http.MethodGet, "/user", s.AccessToken, nil, &u)
	switch {
	case err == nil:
		if u.ID != "" && u.ID != s.User.ID {
			return nil, fmt.Errorf("%w: session user mismatch", common.ErrInvalidToken)
		}
		return s, nil
	case errors.Is(err, common.ErrUnauthorized):
		return c.refreshOrDrop(ctx, s)
	default:
		return nil, err
	}
}

func (c *Client) refreshOrDrop(ctx context.Context, stale *models.Session) (*models.Session, error) {
	s, err := c.refresh(ctx, stale)
	if errors.Is(err, common.ErrUnauthorized) || errors.Is(err, common.ErrNoSession) {
		return nil, nil
	}
	return s, err
}

// Refresh exchanges the refresh token for a new session. Concurrent calls
// share a single exchange. A rejected refresh token signs the client out
// unless the session was rotated meanwhile.
func (c *Client) Refresh(ctx context.Context) (*models.Session, error) {
	return c.refresh(ctx, c.current())
}

// refresh replaces stale. A caller whose stale session was already rotated
// by someone else gets the newer session without another exchange.
func (c *Client) refresh(ctx context.Context, stale *models.Session) (*models.Session, error) {
	if stale == nil || stale.RefreshToken == "" {
		return nil, common.ErrNoSession
	}

	v, err, _ := c.refreshes.Do(stale.RefreshToken, func() (any, error) {
		cur := c.current()
		switch {
		case cur == nil:
			return nil, common.ErrNoSession
		case cur.RefreshToken != stale.RefreshToken:
			return cur, nil
		}
		return c.exchange(context.WithoutCancel(ctx), stale.RefreshToken)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Session), nil
}

func (c *Client) exchange(ctx context.Context, refreshToken string) (*models.Session, error) {
	var tr tokenResponse
	body := map[string]string{"refresh_token": refreshToken}
	err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", body, &tr)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) && c.dropIfCurrent(refreshToken) {
			c.logger.Info(ctx, "refresh token rejected, signing out")
		}
		return nil, err
	}

	ns, err := c.toSession(&tr)
	if err != nil {
		return nil, err
	}
	c.store(ns, remote.EventTokenRefreshed)
	return ns, nil
}

// dropIfCurrent signs out when refreshToken still belongs to the held
// session.
func (c *Client) dropIfCurrent(refreshToken string) bool {
	c.mu.Lock()
	if c.session == nil || c.session.RefreshToken != refreshToken {
		c.mu.Unlock()
		return false
	}
	c.session = nil
	c.mu.Unlock()

	c.publish(remote.SessionEvent{Kind: remote.EventSignedOut})
	return true
}

// AccessToken returns a non-expired access token, refreshing when needed.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	s := c.current()
	if s == nil {
		return "", common.ErrNoSession
	}
	if s.Expired(c.now(), c.leeway) {
		ns, err := c.refresh(ctx, s)
		if err != nil {
			return "", err
		}
		s = ns
	}
	return s.AccessToken, nil
}

func (c *Client) store(s *models.Session, kind remote.EventKind) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	c.publish(remote.SessionEvent{Kind: kind, Session: s})
}

func (c *Client) publish(ev remote.SessionEvent) {
	select {
	case c.events <- ev:
	default:
		c.logger.Warn(context.Background(), "session event dropped", "kind", ev.Kind.String())
	}
}

func (c *Client) toSession(tr *tokenResponse) (*models.Session, error) {
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", common.ErrInvalidToken)
	}
	if _, err := uuid.Parse(tr.User.ID); err != nil {
		return nil, fmt.Errorf("%w: user id %q: %v", common.ErrValidation, tr.User.ID, err)
	}

	s := &models.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		User:         models.User{ID: tr.User.ID, Email: tr.User.Email},
	}

	switch {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	default:
		if claims, err := remote.ParseToken(tr.AccessToken); err == nil {
			s.ExpiresAt = claims.Expiry()
		}
	}
	return s, nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
