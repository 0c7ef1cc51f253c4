package session

import (
	"errors"
	"testing"
	"time"
)

func TestTokenCacheRoundTrip(t *testing.T) {
	storage := NewMemoryStorage()
	cache := NewTokenCache(storage, "client-1")
	now := time.Now().Truncate(time.Second)
	s := testSession(t, "alice", now, time.Hour)
	s.ClockDrift = 3 * time.Second

	if err := cache.Save("alice", s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := storage.GetItem("CognitoIdentityServiceProvider.client-1.alice.idToken"); !ok {
		t.Fatal("expected SDK-compatible id token key")
	}
	if v, _ := storage.GetItem("CognitoIdentityServiceProvider.client-1.alice.clockDrift"); v != "3" {
		t.Fatalf("expected clock drift in seconds, got %q", v)
	}
	user, ok := cache.LastAuthUser()
	if !ok || user != "alice" {
		t.Fatalf("expected last auth user alice, got %q", user)
	}

	loaded, err := cache.Load("alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *loaded != *s {
		t.Fatalf("loaded session differs: %+v vs %+v", loaded, s)
	}
}

func TestTokenCacheLoadPartialIsNotCached(t *testing.T) {
	storage := NewMemoryStorage()
	cache := NewTokenCache(storage, "client-1")
	storage.SetItem("CognitoIdentityServiceProvider.client-1.alice.idToken", "id")
	storage.SetItem("CognitoIdentityServiceProvider.client-1.alice.accessToken", "access")

	if _, err := cache.Load("alice"); !errors.Is(err, ErrNotCached) {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}
}

func TestTokenCacheRemove(t *testing.T) {
	storage := NewMemoryStorage()
	cache := NewTokenCache(storage, "client-1")
	now := time.Now()
	if err := cache.Save("alice", testSession(t, "alice", now, time.Hour)); err != nil {
		t.Fatalf("Save alice: %v", err)
	}
	if err := cache.Save("bob", testSession(t, "bob", now, time.Hour)); err != nil {
		t.Fatalf("Save bob: %v", err)
	}

	cache.Remove("alice")
	if _, err := cache.Load("alice"); !errors.Is(err, ErrNotCached) {
		t.Fatalf("expected alice removed, got %v", err)
	}
	if user, _ := cache.LastAuthUser(); user != "bob" {
		t.Fatalf("removing another user must keep LastAuthUser, got %q", user)
	}

	cache.Remove("bob")
	cache.Remove("bob")
	if _, ok := cache.LastAuthUser(); ok {
		t.Fatal("expected LastAuthUser cleared")
	}
	if storage.Len() != 0 {
		t.Fatalf("expected empty storage, got %d items", storage.Len())
	}
}

func TestTokenCacheSaveRejectsIncomplete(t *testing.T) {
	cache := NewTokenCache(nil, "client-1")
	if err := cache.Save("alice", &Session{IDToken: "x"}); !errors.Is(err, ErrIncompleteSession) {
		t.Fatalf("expected ErrIncompleteSession, got %v", err)
	}
}
