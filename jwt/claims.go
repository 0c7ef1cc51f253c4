package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken is returned when a token cannot be split and decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrMissingExpiry is returned when a token carries no exp claim.
	ErrMissingExpiry = errors.New("token has no exp claim")
)

// Token use values carried in the token_use claim.
const (
	TokenUseID     = "id"
	TokenUseAccess = "access"
)

// Claims is the subset of provider token claims read by the session layer.
//
// Id tokens name the user in cognito:username, access tokens in username.
type Claims struct {
	IDTokenUsername     string `json:"cognito:username,omitempty"`
	AccessTokenUsername string `json:"username,omitempty"`
	Email               string `json:"email,omitempty"`
	TokenUse            string `json:"token_use,omitempty"`
	ClientID            string `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// Username returns the user name claim regardless of the token kind.
func (c *Claims) Username() string {
	if c == nil {
		return ""
	}
	if c.IDTokenUsername != "" {
		return c.IDTokenUsername
	}
	return c.AccessTokenUsername
}

// Expiry returns the exp claim or ErrMissingExpiry.
func (c *Claims) Expiry() (time.Time, error) {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}, ErrMissingExpiry
	}
	return c.ExpiresAt.Time, nil
}

// Issued returns the iat claim, or the zero time when absent.
func (c *Claims) Issued() time.Time {
	if c == nil || c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

var parser = jwt.NewParser()

// Decode parses token and returns its claims without signature verification.
func Decode(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMalformedToken
	}
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

// ExpiresAt decodes token and returns its exp claim.
func ExpiresAt(token string) (time.Time, error) {
	claims, err := Decode(token)
	if err != nil {
		return time.Time{}, err
	}
	return claims.Expiry()
}
