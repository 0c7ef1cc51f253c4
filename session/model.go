package session

import (
	"errors"
	"time"

	"github.com/MrEthical07/goCognito/jwt"
)

// ErrIncompleteSession is returned when any of the three tokens is missing.
var ErrIncompleteSession = errors.New("session requires id, access and refresh tokens")

// Session is the provider-issued token triple plus the clock drift observed when it was
// issued. Sessions are immutable; a refresh produces a new value.
type Session struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ClockDrift   time.Duration
}

// New builds a session from freshly issued tokens, computing clock drift against the
// local clock.
func New(idToken, accessToken, refreshToken string) (*Session, error) {
	return NewAt(idToken, accessToken, refreshToken, time.Now())
}

// NewAt is New with an explicit reference time.
func NewAt(idToken, accessToken, refreshToken string, now time.Time) (*Session, error) {
	if idToken == "" || accessToken == "" || refreshToken == "" {
		return nil, ErrIncompleteSession
	}
	s := &Session{
		IDToken:      idToken,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	s.ClockDrift = s.computeDrift(now)
	return s, nil
}

// Restore rebuilds a cached session without recomputing drift.
func Restore(idToken, accessToken, refreshToken string, drift time.Duration) (*Session, error) {
	if idToken == "" || accessToken == "" || refreshToken == "" {
		return nil, ErrIncompleteSession
	}
	return &Session{
		IDToken:      idToken,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ClockDrift:   drift,
	}, nil
}

// WithTokens returns a copy carrying the refreshed id and access tokens. The refresh
// token is kept unless newRefresh is non-empty.
func (s *Session) WithTokens(idToken, accessToken, newRefresh string, now time.Time) (*Session, error) {
	refresh := s.RefreshToken
	if newRefresh != "" {
		refresh = newRefresh
	}
	return NewAt(idToken, accessToken, refresh, now)
}

// Complete reports whether all three tokens are present.
func (s *Session) Complete() bool {
	return s != nil && s.IDToken != "" && s.AccessToken != "" && s.RefreshToken != ""
}

// IsValid reports whether both the id and access token are unexpired at now, adjusted by
// the recorded clock drift. Undecodable tokens are treated as expired.
func (s *Session) IsValid(now time.Time) bool {
	if !s.Complete() {
		return false
	}
	adjusted := now.Add(-s.ClockDrift)
	accessExp, err := jwt.ExpiresAt(s.AccessToken)
	if err != nil || !adjusted.Before(accessExp) {
		return false
	}
	idExp, err := jwt.ExpiresAt(s.IDToken)
	if err != nil || !adjusted.Before(idExp) {
		return false
	}
	return true
}

// ExpiresAt returns the earlier of the id and access token expiry.
func (s *Session) ExpiresAt() time.Time {
	if !s.Complete() {
		return time.Time{}
	}
	accessExp, err1 := jwt.ExpiresAt(s.AccessToken)
	idExp, err2 := jwt.ExpiresAt(s.IDToken)
	switch {
	case err1 != nil && err2 != nil:
		return time.Time{}
	case err1 != nil:
		return idExp
	case err2 != nil:
		return accessExp
	case idExp.Before(accessExp):
		return idExp
	default:
		return accessExp
	}
}

// Claims decodes the id token claims.
func (s *Session) Claims() (*jwt.Claims, error) {
	if s == nil {
		return nil, ErrIncompleteSession
	}
	return jwt.Decode(s.IDToken)
}

// Username returns the user name carried by the id token, falling back to the access token.
func (s *Session) Username() string {
	if s == nil {
		return ""
	}
	if c, err := jwt.Decode(s.IDToken); err == nil && c.Username() != "" {
		return c.Username()
	}
	if c, err := jwt.Decode(s.AccessToken); err == nil {
		return c.Username()
	}
	return ""
}

func (s *Session) computeDrift(now time.Time) time.Duration {
	idClaims, err1 := jwt.Decode(s.IDToken)
	accessClaims, err2 := jwt.Decode(s.AccessToken)
	var issued time.Time
	switch {
	case err1 == nil && err2 == nil:
		issued = idClaims.Issued()
		if a := accessClaims.Issued(); !a.IsZero() && (issued.IsZero() || a.Before(issued)) {
			issued = a
		}
	case err1 == nil:
		issued = idClaims.Issued()
	case err2 == nil:
		issued = accessClaims.Issued()
	}
	if issued.IsZero() {
		return 0
	}
	return now.Sub(issued).Truncate(time.Second)
}

// Subject returns the sub claim of the id token.
func (s *Session) Subject() string {
	c, err := s.Claims()
	if err != nil {
		return ""
	}
	return c.Subject
}
