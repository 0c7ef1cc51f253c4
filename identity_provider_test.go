package goCognito

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goCognito/cognito"
	"github.com/MrEthical07/goCognito/jwt"
	"github.com/MrEthical07/goCognito/session"
)

func testSession(t *testing.T, username string, ttl time.Duration) *session.Session {
	t.Helper()
	tok := testTokens(t, username, ttl)
	s, err := session.Restore(tok.IDToken, tok.AccessToken, tok.RefreshToken, 0)
	if err != nil {
		t.Fatalf("session.Restore: %v", err)
	}
	return s
}

func TestGetIdentityWithoutSessionIsAnonymous(t *testing.T) {
	engine := newTestEngine(t, newStubUserPool(), nil)

	id := engine.IdentityProvider().GetIdentity(context.Background())
	if id.IsAuthenticated() || id.Name() != "" {
		t.Fatalf("expected anonymous identity, got %s", id)
	}
	if len(id.Identifiers()) != 0 {
		t.Fatalf("expected no identifiers, got %v", id.Identifiers())
	}
}

func TestUpdateDerivesIdentity(t *testing.T) {
	engine := newTestEngine(t, newStubUserPool(), nil)
	provider := engine.IdentityProvider()
	sess := testSession(t, "alice", time.Hour)

	id, err := provider.Update(context.Background(), "alice", sess)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !id.IsAuthenticated() || id.Name() != "alice" {
		t.Fatalf("expected alice, got %s", id)
	}

	ids := id.Identifiers()
	if ids[IdentifierSubject] != "sub-alice" || ids[IdentifierUsername] != "alice" ||
		ids[IdentifierEmail] != "alice@example.com" || ids[IdentifierJWT] != sess.IDToken {
		t.Fatalf("unexpected identifiers %v", ids)
	}
	if _, ok := id.Identifier(IdentifierIdentityID); ok {
		t.Fatal("identity_id must be absent without an identity pool")
	}

	ids["sub"] = "tampered"
	if v, _ := id.Identifier(IdentifierSubject); v != "sub-alice" {
		t.Fatal("Identifiers must return a copy")
	}

	if again := provider.GetIdentity(context.Background()); again != id {
		t.Fatal("unchanged state must return the same Identity")
	}
}

func TestUpdateRejectsIncompleteSession(t *testing.T) {
	provider := newTestEngine(t, newStubUserPool(), nil).IdentityProvider()

	_, err := provider.Update(context.Background(), "alice", &session.Session{IDToken: "id", AccessToken: "access"})
	if !errors.Is(err, ErrIncompleteSession) {
		t.Fatalf("expected ErrIncompleteSession, got %v", err)
	}
	if _, err := provider.Update(context.Background(), "", testSession(t, "alice", time.Hour)); !errors.Is(err, ErrUsernameRequired) {
		t.Fatalf("expected ErrUsernameRequired, got %v", err)
	}
	if provider.GetIdentity(context.Background()).IsAuthenticated() {
		t.Fatal("rejected update must not authenticate")
	}
}

func TestUpdateReplacesPreviousUser(t *testing.T) {
	engine := newTestEngine(t, newStubUserPool(), nil)
	provider := engine.IdentityProvider()
	ctx := context.Background()

	if _, err := provider.Update(ctx, "alice", testSession(t, "alice", time.Hour)); err != nil {
		t.Fatalf("Update alice failed: %v", err)
	}
	id, err := provider.Update(ctx, "bob", testSession(t, "bob", time.Hour))
	if err != nil {
		t.Fatalf("Update bob failed: %v", err)
	}
	if id.Name() != "bob" {
		t.Fatalf("expected bob, got %s", id)
	}

	cache := provider.UserPool().cache
	if _, err := cache.Load("alice"); !errors.Is(err, session.ErrNotCached) {
		t.Fatalf("expected alice tokens removed, got %v", err)
	}
	if last, _ := cache.LastAuthUser(); last != "bob" {
		t.Fatalf("expected LastAuthUser bob, got %q", last)
	}
}

func TestClearSignsOutAndIsIdempotent(t *testing.T) {
	svc := newStubUserPool()
	svc.signOutErr = &cognito.ServiceError{Code: cognito.CodeNetworking}
	engine := newTestEngine(t, svc, func(b *Builder) { b.WithMetricsEnabled(true) })
	provider := engine.IdentityProvider()
	ctx := context.Background()

	sess := testSession(t, "alice", time.Hour)
	if _, err := provider.Update(ctx, "alice", sess); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := provider.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if id := provider.GetIdentity(ctx); id.IsAuthenticated() {
		t.Fatalf("expected anonymous after Clear, got %s", id)
	}
	if err := provider.Clear(ctx); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
	if id := provider.GetIdentity(ctx); id.IsAuthenticated() {
		t.Fatalf("expected anonymous after second Clear, got %s", id)
	}

	if len(svc.signOutTokens) != 1 || svc.signOutTokens[0] != sess.AccessToken {
		t.Fatalf("expected one remote sign-out with the access token, got %d", len(svc.signOutTokens))
	}
	if got := engine.MetricsSnapshot().Counters[MetricIdentityClear]; got != 2 {
		t.Fatalf("expected MetricIdentityClear=2, got %d", got)
	}
}

func TestClearWithDoneContext(t *testing.T) {
	provider := newTestEngine(t, newStubUserPool(), nil).IdentityProvider()
	if _, err := provider.Update(context.Background(), "alice", testSession(t, "alice", time.Hour)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := provider.Clear(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !provider.GetIdentity(context.Background()).IsAuthenticated() {
		t.Fatal("a refused Clear must leave the session in place")
	}
}

func TestExpiredSessionIsRefreshed(t *testing.T) {
	svc := newStubUserPool()
	svc.refresh = func(username, refreshToken string) (*cognito.Tokens, error) {
		if refreshToken != "refresh-alice" {
			return nil, &cognito.ServiceError{Code: cognito.CodeNotAuthorized}
		}
		tok := testTokens(t, username, time.Hour)
		tok.RefreshToken = ""
		return tok, nil
	}
	engine := newTestEngine(t, svc, func(b *Builder) { b.WithMetricsEnabled(true) })
	provider := engine.IdentityProvider()
	ctx := context.Background()

	expired := testSession(t, "alice", -time.Minute)
	id, err := provider.Update(ctx, "alice", expired)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !id.IsAuthenticated() {
		t.Fatalf("expected refreshed identity, got %s", id)
	}

	current := id.Credentials().Session
	if current.IDToken == expired.IDToken || current.RefreshToken != "refresh-alice" {
		t.Fatal("expected new tokens with the original refresh token")
	}
	cached, err := provider.UserPool().cache.Load("alice")
	if err != nil || cached.IDToken != current.IDToken {
		t.Fatalf("expected refreshed session cached, err=%v", err)
	}

	provider.GetIdentity(ctx)
	if svc.count("RefreshSession") != 1 {
		t.Fatalf("expected a single refresh, got %d", svc.count("RefreshSession"))
	}
	if got := engine.MetricsSnapshot().Counters[MetricSessionRefreshSuccess]; got != 1 {
		t.Fatalf("expected MetricSessionRefreshSuccess=1, got %d", got)
	}
}

func TestRejectedRefreshDropsSession(t *testing.T) {
	svc := newStubUserPool()
	engine := newTestEngine(t, svc, nil)
	provider := engine.IdentityProvider()

	id, err := provider.Update(context.Background(), "alice", testSession(t, "alice", -time.Minute))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if id.IsAuthenticated() {
		t.Fatalf("expected anonymous identity, got %s", id)
	}
	if _, err := provider.UserPool().cache.Load("alice"); !errors.Is(err, session.ErrNotCached) {
		t.Fatalf("expected rejected tokens removed, got %v", err)
	}
}

func TestOfflineRefresh(t *testing.T) {
	unreachable := func(string, string) (*cognito.Tokens, error) {
		return nil, &cognito.ServiceError{Code: cognito.CodeNetworking, Message: "dial tcp: timeout"}
	}

	t.Run("disabled degrades but keeps tokens", func(t *testing.T) {
		svc := newStubUserPool()
		svc.refresh = unreachable
		provider := newTestEngine(t, svc, nil).IdentityProvider()

		id, err := provider.Update(context.Background(), "alice", testSession(t, "alice", -time.Minute))
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if id.IsAuthenticated() {
			t.Fatal("expected anonymous identity without offline refresh")
		}
		if _, err := provider.UserPool().cache.Load("alice"); err != nil {
			t.Fatalf("tokens must survive a network failure: %v", err)
		}
	})

	t.Run("enabled keeps cached session", func(t *testing.T) {
		svc := newStubUserPool()
		svc.refresh = unreachable
		cfg := testConfig()
		cfg.Session.AllowOfflineRefresh = true
		provider := newTestEngine(t, svc, func(b *Builder) { b.WithConfig(cfg) }).IdentityProvider()

		id, err := provider.Update(context.Background(), "alice", testSession(t, "alice", -time.Minute))
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if !id.IsAuthenticated() || id.Name() != "alice" {
			t.Fatalf("expected cached alice, got %s", id)
		}
	})
}

func TestTransientRefreshFailureKeepsTokens(t *testing.T) {
	for _, code := range []string{cognito.CodeRequestCanceled, "TooManyRequestsException", "InternalErrorException"} {
		t.Run(code, func(t *testing.T) {
			var failed bool
			svc := newStubUserPool()
			svc.refresh = func(username, _ string) (*cognito.Tokens, error) {
				if !failed {
					failed = true
					return nil, &cognito.ServiceError{Code: code}
				}
				return testTokens(t, username, time.Hour), nil
			}
			provider := newTestEngine(t, svc, nil).IdentityProvider()

			id, err := provider.Update(context.Background(), "alice", testSession(t, "alice", -time.Minute))
			if err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			if id.IsAuthenticated() {
				t.Fatalf("expected anonymous identity after a failed refresh, got %s", id)
			}
			if _, err := provider.UserPool().cache.Load("alice"); err != nil {
				t.Fatalf("tokens must survive %s: %v", code, err)
			}

			id = provider.GetIdentity(context.Background())
			if !id.IsAuthenticated() || id.Name() != "alice" {
				t.Fatalf("expected alice after retry, got %s", id)
			}
		})
	}
}

func TestServiceCredentials(t *testing.T) {
	creds := &stubCredentials{}
	cfg := testConfig()
	cfg.IdentityPool.IdentityPoolID = "eu-west-1:pool"
	engine := newTestEngine(t, newStubUserPool(), func(b *Builder) {
		b.WithConfig(cfg).WithCredentialsService(creds)
	})
	provider := engine.IdentityProvider()
	ctx := context.Background()

	id, err := provider.Update(ctx, "alice", testSession(t, "alice", time.Hour))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	svc := id.Credentials().Service
	if svc == nil || svc.IdentityID != "eu-west-1:identity-1" {
		t.Fatalf("expected service credentials, got %v", svc)
	}
	if v, _ := id.Identifier(IdentifierIdentityID); v != "eu-west-1:identity-1" {
		t.Fatalf("expected identity_id identifier, got %q", v)
	}
	if v, ok := provider.storage.GetItem(identityIDKeyPrefix + "eu-west-1:pool"); !ok || v != "eu-west-1:identity-1" {
		t.Fatalf("expected cached identity id, got %q", v)
	}

	provider.GetIdentity(ctx)
	if creds.calls.Load() != 1 {
		t.Fatalf("fresh credentials must be reused, got %d calls", creds.calls.Load())
	}

	creds.err = &cognito.ServiceError{Code: cognito.CodeNotAuthorized}
	if err := provider.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	id, err = provider.Update(ctx, "alice", testSession(t, "alice", time.Hour))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if id.IsAuthenticated() {
		t.Fatal("expected anonymous identity when credentials fail")
	}
}

func TestConcurrentGetIdentity(t *testing.T) {
	svc := newStubUserPool()
	svc.refresh = func(username, _ string) (*cognito.Tokens, error) {
		time.Sleep(10 * time.Millisecond)
		return testTokens(t, username, time.Hour), nil
	}
	provider := newTestEngine(t, svc, nil).IdentityProvider()
	ctx := context.Background()

	cache := provider.UserPool().cache
	if err := cache.Save("alice", testSession(t, "alice", -time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	const goroutines = 16
	var wg sync.WaitGroup
	results := make([]*Identity, goroutines)
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = provider.GetIdentity(ctx)
		}(i)
	}
	wg.Wait()

	for i, id := range results {
		if !id.IsAuthenticated() || id.Name() != "alice" {
			t.Fatalf("goroutine %d: expected alice, got %s", i, id)
		}
	}
	if calls := svc.count("RefreshSession"); calls < 1 || calls > goroutines {
		t.Fatalf("unexpected refresh calls %d", calls)
	}

	s, err := cache.Load("alice")
	if err != nil || !s.IsValid(time.Now()) {
		t.Fatalf("expected a valid cached session, err=%v", err)
	}
	if c, _ := jwt.Decode(s.IDToken); c.Username() != "alice" {
		t.Fatal("cached session must belong to alice")
	}
}

func TestIdentityStringRedactsTokens(t *testing.T) {
	provider := newTestEngine(t, newStubUserPool(), nil).IdentityProvider()
	sess := testSession(t, "alice", time.Hour)
	id, err := provider.Update(context.Background(), "alice", sess)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := id.String(); got != `Identity{name="alice"}` {
		t.Fatalf("unexpected String %q", got)
	}
}
