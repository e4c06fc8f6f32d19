package remote

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access token claims the auth service issues. The database
// verifies the signature itself; the client only reads them.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

var parser = jwt.NewParser()

// ParseToken decodes an access token without verifying its signature. The
// token was issued to this client by the auth service; only the subject and
// expiry are needed locally.
func ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token without subject", common.ErrInvalidToken)
	}
	return claims, nil
}

// Expiry returns the exp claim, or the zero time.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
