package session

import (
	"errors"
	"strconv"
	"time"
)

// ErrNotCached is returned by [TokenCache.Load] when no complete session is stored for a user.
var ErrNotCached = errors.New("no cached session")

// KeyPrefix starts every key written by a [TokenCache].
const KeyPrefix = "CognitoIdentityServiceProvider"

const (
	keyLastAuthUser = "LastAuthUser"
	keyIDToken      = "idToken"
	keyAccessToken  = "accessToken"
	keyRefreshToken = "refreshToken"
	keyClockDrift   = "clockDrift"
)

// TokenCache stores sessions for one app client under the provider SDK key layout:
//
//	CognitoIdentityServiceProvider.<clientID>.<username>.idToken
//	CognitoIdentityServiceProvider.<clientID>.LastAuthUser
type TokenCache struct {
	storage  Storage
	clientID string
}

// NewTokenCache binds a cache to storage for clientID.
func NewTokenCache(storage Storage, clientID string) *TokenCache {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &TokenCache{storage: storage, clientID: clientID}
}

// Storage returns the underlying synchronous storage.
func (c *TokenCache) Storage() Storage {
	return c.storage
}

func (c *TokenCache) clientKey(suffix string) string {
	return KeyPrefix + "." + c.clientID + "." + suffix
}

func (c *TokenCache) userKey(username, suffix string) string {
	return KeyPrefix + "." + c.clientID + "." + username + "." + suffix
}

// LastAuthUser returns the user name of the most recently cached session.
func (c *TokenCache) LastAuthUser() (string, bool) {
	v, ok := c.storage.GetItem(c.clientKey(keyLastAuthUser))
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Load returns the cached session for username, or ErrNotCached when any token is absent.
func (c *TokenCache) Load(username string) (*Session, error) {
	if username == "" {
		return nil, ErrNotCached
	}
	idToken, _ := c.storage.GetItem(c.userKey(username, keyIDToken))
	accessToken, _ := c.storage.GetItem(c.userKey(username, keyAccessToken))
	refreshToken, _ := c.storage.GetItem(c.userKey(username, keyRefreshToken))

	var drift time.Duration
	if raw, ok := c.storage.GetItem(c.userKey(username, keyClockDrift)); ok {
		if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
			drift = time.Duration(secs) * time.Second
		}
	}

	s, err := Restore(idToken, accessToken, refreshToken, drift)
	if err != nil {
		return nil, ErrNotCached
	}
	return s, nil
}

// Save stores s for username and marks username as the last authenticated user.
func (c *TokenCache) Save(username string, s *Session) error {
	if !s.Complete() {
		return ErrIncompleteSession
	}
	c.storage.SetItem(c.userKey(username, keyIDToken), s.IDToken)
	c.storage.SetItem(c.userKey(username, keyAccessToken), s.AccessToken)
	c.storage.SetItem(c.userKey(username, keyRefreshToken), s.RefreshToken)
	c.storage.SetItem(c.userKey(username, keyClockDrift), strconv.FormatInt(int64(s.ClockDrift/time.Second), 10))
	c.storage.SetItem(c.clientKey(keyLastAuthUser), username)
	return nil
}

// Remove deletes the cached tokens of username. LastAuthUser is cleared when it names username.
func (c *TokenCache) Remove(username string) {
	if username == "" {
		return
	}
	c.storage.RemoveItem(c.userKey(username, keyIDToken))
	c.storage.RemoveItem(c.userKey(username, keyAccessToken))
	c.storage.RemoveItem(c.userKey(username, keyRefreshToken))
	c.storage.RemoveItem(c.userKey(username, keyClockDrift))
	if last, ok := c.LastAuthUser(); ok && last == username {
		c.storage.RemoveItem(c.clientKey(keyLastAuthUser))
	}
}
