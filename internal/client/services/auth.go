package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote"
	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/dmitrijs2005/expensesheets/internal/logging"
)

// Identity is a snapshot of who is signed in.
type Identity struct {
	Session *models.Session
	Profile *models.Employee
}

// Key identifies the (user, profile) pair; it is empty unless both exist.
func (id Identity) Key() string {
	if id.Session == nil || id.Profile == nil {
		return ""
	}
	return id.Session.User.ID + "/" + id.Profile.ID
}

// ProfileSource exposes the current employee profile.
type ProfileSource interface {
	Profile() *models.Employee
}

// Coordinator owns the session and the employee profile. The cached copy
// only hides latency: Init always revalidates with the auth service, and
// every session event re-fetches the profile.
type Coordinator struct {
	auth      remote.Auth
	employees remote.Employees
	cache     SessionCache
	logger    logging.Logger

	mu      sync.RWMutex
	session *models.Session
	profile *models.Employee

	subsMu sync.Mutex
	subs   map[int]chan Identity
	nextID int
}

func NewCoordinator(auth remote.Auth, employees remote.Employees, cache SessionCache, logger logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Coordinator{
		auth:      auth,
		employees: employees,
		cache:     cache,
		logger:    logger,
		subs:      make(map[int]chan Identity),
	}
}

var _ ProfileSource = (*Coordinator)(nil)

func (c *Coordinator) Session() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// User is nil when nobody is signed in.
func (c *Coordinator) User() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	u := c.session.User
	return &u
}

func (c *Coordinator) Profile() *models.Employee {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

func (c *Coordinator) Identity() Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Identity{Session: c.session, Profile: c.profile}
}

// Route decides which screen the current identity belongs on.
func (c *Coordinator) Route() Route {
	id := c.Identity()
	return Resolve(id.Session, id.Profile)
}

// Init hydrates from the cache, then revalidates with the auth service.
// When the service cannot be reached the cached identity is kept and the
// error is returned so the caller can warn.
func (c *Coordinator) Init(ctx context.Context) error {
	sess, profile, err := c.cache.Load(ctx)
	if err != nil {
		c.logger.Warn(ctx, "session cache unreadable", "error", err)
	}

	c.mu.Lock()
	c.session, c.profile = sess, profile
	c.mu.Unlock()

	if sess != nil {
		c.auth.SetSession(sess)
		c.notify()
	}

	current, err := c.auth.GetSession(ctx)
	if err != nil {
		c.logger.Warn(ctx, "session revalidation failed", "error", err)
		return fmt.Errorf("revalidate session: %w", err)
	}

	if current == nil {
		c.logger.Debug(ctx, "no remote session")
		c.reset(ctx)
		return nil
	}

	c.storeSession(ctx, current)
	_, _ = c.RefreshProfile(ctx)
	return nil
}

// Run consumes session events until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	events := c.auth.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.handle(ctx, ev)
		}
	}
}

func (c *Coordinator) handle(ctx context.Context, ev remote.SessionEvent) {
	c.logger.Debug(ctx, "session event", "kind", ev.Kind.String())

	if ev.Kind == remote.EventSignedOut || ev.Session == nil {
		if c.Session() != nil {
			c.reset(ctx)
		}
		return
	}

	c.storeSession(ctx, ev.Session)
	_, _ = c.RefreshProfile(ctx)
}

// RefreshProfile re-reads the profile of the signed-in user. A user without
// a profile is not an error; any other failure leaves the profile nil and
// is returned for display.
func (c *Coordinator) RefreshProfile(ctx context.Context) (*models.Employee, error) {
	sess := c.Session()
	if sess == nil {
		c.storeProfile(ctx, nil)
		return nil, common.ErrNoSession
	}

	e, err := c.employees.EmployeeByUser(ctx, sess.User.ID)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrNotFound):
		e, err = nil, nil
	default:
		c.logger.Warn(ctx, "profile fetch failed", "user", sess.User.ID, "error", err)
		e = nil
	}

	c.storeProfile(ctx, e)
	return e, err
}

// SetProfile installs a freshly created profile.
func (c *Coordinator) SetProfile(ctx context.Context, e *models.Employee) error {
	if e != nil {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	c.storeProfile(ctx, e)
	return nil
}

func (c *Coordinator) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	s, err := c.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.storeSession(ctx, s)
	_, _ = c.RefreshProfile(ctx)
	return s, nil
}

// SignUp returns a nil session when the address must be confirmed before
// signing in.
func (c *Coordinator) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	s, err := c.auth.SignUp(ctx, email, password)
	if err != nil || s == nil {
		return nil, err
	}
	c.storeSession(ctx, s)
	_, _ = c.RefreshProfile(ctx)
	return s, nil
}

// SignOut always clears local state; the remote error, if any, is returned.
func (c *Coordinator) SignOut(ctx context.Context) error {
	err := c.auth.SignOut(ctx)
	c.reset(ctx)
	return err
}

// Subscribe delivers the latest identity after each change. Slow readers
// only see the most recent snapshot. cancel releases the channel.
func (c *Coordinator) Subscribe() (updates <-chan Identity, cancel func()) {
	ch := make(chan Identity, 1)

	c.subsMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
		})
	}
}

func (c *Coordinator) notify() {
	snap := c.Identity()

	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (c *Coordinator) storeSession(ctx context.Context, s *models.Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	if err := c.cache.SaveSession(ctx, s); err != nil {
		c.logger.Warn(ctx, "session cache write failed", "error", err)
	}
	c.notify()
}

func (c *Coordinator) storeProfile(ctx context.Context, e *models.Employee) {
	c.mu.Lock()
	c.profile = e
	c.mu.Unlock()

	if err := c.cache.SaveProfile(ctx, e); err != nil {
		c.logger.Warn(ctx, "profile cache write failed", "error", err)
	}
	c.notify()
}

func (c *Coordinator) reset(ctx context.Context) {
	c.mu.Lock()
	c.session, c.profile = nil, nil
	c.mu.Unlock()

	if err := c.cache.Clear(ctx); err != nil {
		c.logger.Warn(ctx, "session cache clear failed", "error", err)
	}
	c.notify()
}
