package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/repositories/cache"
	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/dmitrijs2005/expensesheets/internal/cryptox"
	"github.com/vmihailenco/msgpack/v5"
)

// SessionCache persists the last known session and profile on the device.
type SessionCache interface {
	Load(ctx context.Context) (*models.Session, *models.Employee, error)
	SaveSession(ctx context.Context, s *models.Session) error
	SaveProfile(ctx context.Context, e *models.Employee) error
	Clear(ctx context.Context) error
}

// SessionStore keeps both blobs msgpack-encoded and sealed with a key
// derived from the configured secret and a per-install salt.
type SessionStore struct {
	repo   cache.Repository
	secret []byte

	mu  sync.Mutex
	key []byte
}

func NewSessionStore(repo cache.Repository, secret []byte) *SessionStore {
	return &SessionStore{repo: repo, secret: secret}
}

var _ SessionCache = (*SessionStore)(nil)

func (s *SessionStore) sealKey(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return s.key, nil
	}

	salt, err := s.repo.Get(ctx, cache.KeySalt)
	if err != nil {
		return nil, err
	}
	if len(salt) != cryptox.SaltSize {
		salt = common.GenerateRandByteArray(cryptox.SaltSize)
		if err := s.repo.Set(ctx, cache.KeySalt, salt); err != nil {
			return nil, err
		}
	}

	s.key = cryptox.DeriveKey(s.secret, salt)
	return s.key, nil
}

func (s *SessionStore) put(ctx context.Context, key string, v any) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	k, err := s.sealKey(ctx)
	if err != nil {
		return err
	}
	blob, err := cryptox.Seal(b, k)
	common.WipeByteArray(b)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, key, blob)
}

// get decodes key into v. It reports false for a missing key.
func (s *SessionStore) get(ctx context.Context, key string, v any) (bool, error) {
	blob, err := s.repo.Get(ctx, key)
	if err != nil || blob == nil {
		return false, err
	}

	k, err := s.sealKey(ctx)
	if err != nil {
		return false, err
	}
	b, err := cryptox.Open(blob, k)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", common.ErrCacheCorrupted, key, err)
	}
	defer common.WipeByteArray(b)

	if err := msgpack.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", common.ErrCacheCorrupted, key, err)
	}
	return true, nil
}

// Load returns whatever is cached. Unreadable entries are removed and
// reported as ErrCacheCorrupted alongside the entries that could be read.
// A cached profile failing its invariants is dropped the same way.
func (s *SessionStore) Load(ctx context.Context) (*models.Session, *models.Employee, error) {
	var (
		sess    models.Session
		profile models.Employee
		errs    error
	)

	okSession, err := s.get(ctx, cache.KeySession, &sess)
	if err != nil {
		errs = err
		_ = s.repo.Delete(ctx, cache.KeySession)
	}

	okProfile, err := s.get(ctx, cache.KeyEmployee, &profile)
	if err == nil && okProfile {
		if verr := profile.Validate(); verr != nil {
			err = fmt.Errorf("%w: %v", common.ErrCacheCorrupted, verr)
			okProfile = false
		}
	}
	if err != nil {
		if errs == nil {
			errs = err
		}
		_ = s.repo.Delete(ctx, cache.KeyEmployee)
	}

	var sp *models.Session
	if okSession {
		sp = &sess
	}
	var pp *models.Employee
	if okProfile && sp != nil {
		pp = &profile
	}
	return sp, pp, errs
}

// SaveSession stores s, or removes the cached session when s is nil.
func (s *SessionStore) SaveSession(ctx context.Context, sess *models.Session) error {
	if sess == nil {
		return s.repo.Delete(ctx, cache.KeySession)
	}
	return s.put(ctx, cache.KeySession, sess)
}

// SaveProfile stores e, or removes the cached profile when e is nil.
func (s *SessionStore) SaveProfile(ctx context.Context, e *models.Employee) error {
	if e == nil {
		return s.repo.Delete(ctx, cache.KeyEmployee)
	}
	return s.put(ctx, cache.KeyEmployee, e)
}

// Clear drops both cached entries. The salt stays.
func (s *SessionStore) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
