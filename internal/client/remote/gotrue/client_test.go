package gotrue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote"
	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "6f1c2a1e-0d7b-4c55-9b1e-3f0a2d6c8e77"

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func tokenJSON(access, refresh string) map[string]any {
	return map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"expires_in":    3600,
		"user":          map[string]any{"id": userID, "email": "ana@example.com"},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "anon-key", WithHTTPClient(srv.Client()), WithClock(func() time.Time { return fixedNow }))
}

func nextEvent(t *testing.T, c *Client) remote.SessionEvent {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no session event")
		return remote.SessionEvent{}
	}
}

func TestSignIn(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana@example.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		writeJSON(w, http.StatusOK, tokenJSON("at-1", "rt-1"))
	})

	s, err := c.SignIn(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "at-1", s.AccessToken)
	assert.Equal(t, userID, s.User.ID)
	assert.Equal(t, fixedNow.Add(time.Hour), s.ExpiresAt)

	ev := nextEvent(t, c)
	assert.Equal(t, remote.EventSignedIn, ev.Kind)
	assert.Equal(t, s, ev.Session)
}

func TestSignIn_BadCredentials(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
	})

	_, err := c.SignIn(context.Background(), "ana@example.com", "nope")
	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Invalid login credentials")
}

func TestSignUp_ConfirmationRequired(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/signup", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"id": userID, "email": "ana@example.com"})
	})

	s, err := c.SignUp(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestGetSession_NoSession(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request %s", r.URL.Path)
	})

	s, err := c.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestGetSession_ValidToken(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"id": userID, "email": "ana@example.com"})
	})
	cached := &models.Session{AccessToken: "at-1", RefreshToken: "rt-1", ExpiresAt: fixedNow.Add(time.Hour), User: models.User{ID: userID}}
	c.SetSession(cached)

	s, err := c.GetSession(context.Background())
	require.NoError(t, err)
	assert.Same(t, cached, s)
}

func TestGetSession_ExpiredRefreshes(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "rt-old", body["refresh_token"])
		writeJSON(w, http.StatusOK, tokenJSON("at-new", "rt-new"))
	})
	c.SetSession(&models.Session{AccessToken: "at-old", RefreshToken: "rt-old", ExpiresAt: fixedNow.Add(-time.Minute), User: models.User{ID: userID}})

	s, err := c.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "at-new", s.AccessToken)
	assert.Equal(t, remote.EventTokenRefreshed, nextEvent(t, c).Kind)
}

func TestGetSession_RejectedRefreshDropsSession(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/user":
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid JWT"})
		case "/token":
			writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "Invalid Refresh Token"})
		}
	})
	c.SetSession(&models.Session{AccessToken: "at", RefreshToken: "rt", ExpiresAt: fixedNow.Add(time.Hour), User: models.User{ID: userID}})

	s, err := c.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, int32(2), calls.Load())

	ev := nextEvent(t, c)
	assert.Equal(t, remote.EventSignedOut, ev.Kind)
	assert.Nil(t, ev.Session)

	_, err = c.AccessToken(context.Background())
	require.ErrorIs(t, err, common.ErrNoSession)
}

func TestGetSession_Unavailable(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"msg": "down"})
	})
	c.SetSession(&models.Session{AccessToken: "at", ExpiresAt: fixedNow.Add(time.Hour), User: models.User{ID: userID}})

	_, err := c.GetSession(context.Background())
	require.ErrorIs(t, err, common.ErrUnavailable)
	assert.NotNil(t, c.current(), "transport problems keep the session")
}

func TestSignOut(t *testing.T) {
	var hit atomic.Bool
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		hit.Store(true)
		assert.Equal(t, "/logout", r.URL.Path)
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})
	c.SetSession(&models.Session{AccessToken: "at", User: models.User{ID: userID}})

	require.NoError(t, c.SignOut(context.Background()))
	assert.True(t, hit.Load())
	assert.Nil(t, c.current())
	assert.Equal(t, remote.EventSignedOut, nextEvent(t, c).Kind)

	// Signing out twice is a no-op.
	require.NoError(t, c.SignOut(context.Background()))
}

func TestAccessToken(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request %s", r.URL.Path)
	})
	c.SetSession(&models.Session{AccessToken: "at", ExpiresAt: fixedNow.Add(time.Hour), User: models.User{ID: userID}})

	tok, err := c.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at", tok)
}

// rotatingAuth answers refresh grants the way the hosted service does with
// rotation on: each refresh token works once.
type rotatingAuth struct {
	mu    sync.Mutex
	used  map[string]bool
	calls atomic.Int32
	delay time.Duration
}

func (a *rotatingAuth) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.calls.Add(1)
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)
	time.Sleep(a.delay)

	a.mu.Lock()
	defer a.mu.Unlock()
	rt := body["refresh_token"]
	if a.used[rt] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "Invalid Refresh Token: Already Used"})
		return
	}
	a.used[rt] = true
	writeJSON(w, http.StatusOK, tokenJSON("at-"+rt, rt+"-next"))
}

func TestAccessToken_ConcurrentCallersShareOneRefresh(t *testing.T) {
	srv := &rotatingAuth{used: map[string]bool{}, delay: 50 * time.Millisecond}
	c := newClient(t, srv.ServeHTTP)
	c.SetSession(&models.Session{AccessToken: "at-old", RefreshToken: "rt", ExpiresAt: fixedNow.Add(-time.Minute), User: models.User{ID: userID}})

	const callers = 3
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = c.AccessToken(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), srv.calls.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "at-rt", tokens[i])
	}
	require.NotNil(t, c.current())
	assert.Equal(t, "rt-next", c.current().RefreshToken)

	ev := nextEvent(t, c)
	assert.Equal(t, remote.EventTokenRefreshed, ev.Kind)
	select {
	case ev := <-c.Events():
		t.Fatalf("unexpected second event %s", ev.Kind)
	default:
	}
}

func TestRefresh_StaleSessionReusesRotatedOne(t *testing.T) {
	srv := &rotatingAuth{used: map[string]bool{}}
	c := newClient(t, srv.ServeHTTP)
	stale := &models.Session{AccessToken: "at-old", RefreshToken: "rt", ExpiresAt: fixedNow.Add(-time.Minute), User: models.User{ID: userID}}
	c.SetSession(stale)

	fresh, err := c.Refresh(context.Background())
	require.NoError(t, err)

	got, err := c.refresh(context.Background(), stale)
	require.NoError(t, err)
	assert.Same(t, fresh, got)
	assert.Equal(t, int32(1), srv.calls.Load())
}

func TestRefresh_LateRejectionKeepsRotatedSession(t *testing.T) {
	srv := &rotatingAuth{used: map[string]bool{}}
	c := newClient(t, srv.ServeHTTP)
	c.SetSession(&models.Session{AccessToken: "at-old", RefreshToken: "rt", ExpiresAt: fixedNow.Add(-time.Minute), User: models.User{ID: userID}})

	_, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, remote.EventTokenRefreshed, nextEvent(t, c).Kind)

	// An exchange that raced the rotation comes back rejected.
	_, err = c.exchange(context.Background(), "rt")
	require.ErrorIs(t, err, common.ErrUnauthorized)

	require.NotNil(t, c.current())
	assert.Equal(t, "rt-next", c.current().RefreshToken)
	select {
	case ev := <-c.Events():
		t.Fatalf("unexpected event %s", ev.Kind)
	default:
	}
}

func TestToSession_RejectsNonUUIDUser(t *testing.T) {
	c := New("http://unused", "k")
	_, err := c.toSession(&tokenResponse{AccessToken: "x", User: userResponse{ID: "42"}})
	require.ErrorIs(t, err, common.ErrValidation)
}
