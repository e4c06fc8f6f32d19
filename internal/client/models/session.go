package models

import "time"

// User is the authenticated identity attached to a Session.
type User struct {
	ID    string `json:"id" msgpack:"id"`
	Email string `json:"email" msgpack:"email"`
}

// Session is the credential bundle returned by the auth service.
type Session struct {
	AccessToken  string    `json:"access_token" msgpack:"access_token"`
	RefreshToken string    `json:"refresh_token" msgpack:"refresh_token"`
	TokenType    string    `json:"token_type" msgpack:"token_type"`
	ExpiresAt    time.Time `json:"expires_at" msgpack:"expires_at"`
	User         User      `json:"user" msgpack:"user"`
}

// Expired reports whether the access token is past its expiry, or will be
// within leeway of now. A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time, leeway time.Duration) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(leeway).Before(s.ExpiresAt)
}

// UserID is nil-safe.
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.User.ID
}
