// Package cache is the on-device key/value store backing the session cache.
package cache

import "context"

// Keys used by the client.
const (
	KeySession  = "session"
	KeyEmployee = "employee"
	KeySalt     = "salt"
)

// Repository stores opaque blobs by key. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
