//go:build integration
// +build integration

package test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	goCognito "github.com/MrEthical07/goCognito"
	"github.com/MrEthical07/goCognito/cognito"
	"github.com/MrEthical07/goCognito/jwt"
	"github.com/MrEthical07/goCognito/session"
	"github.com/alicebob/miniredis/v2"
	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// refreshingPool answers refresh and sign-out. Other exchanges are not used here.
type refreshingPool struct {
	cognito.UserPoolService

	t         *testing.T
	refreshes atomic.Int32
	signOuts  atomic.Int32
}

func (p *refreshingPool) RefreshSession(_ context.Context, username, _ string) (*cognito.Tokens, error) {
	p.refreshes.Add(1)
	sess := makeSession(p.t, username, time.Hour)
	return &cognito.Tokens{IDToken: sess.IDToken, AccessToken: sess.AccessToken}, nil
}

func (p *refreshingPool) GlobalSignOut(context.Context, string) error {
	p.signOuts.Add(1)
	return nil
}

func newIntegrationRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func newIntegrationEngine(t *testing.T, rdb redis.UniversalClient, pool cognito.UserPoolService) *goCognito.Engine {
	t.Helper()

	cfg := goCognito.DefaultConfig()
	cfg.UserPool = goCognito.UserPoolConfig{Region: "eu-west-1", UserPoolID: "eu-west-1_pool", ClientID: "client-it"}
	engine, err := goCognito.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserPoolService(pool).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { _ = engine.Close(context.Background()) })
	return engine
}

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	s, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("integration-signing-key-0123456789"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// makeSession issues a session for username expiring ttl from now. A negative ttl
// yields an expired session.
func makeSession(t *testing.T, username string, ttl time.Duration) *session.Session {
	t.Helper()
	now := time.Now()
	registered := func() gjwt.RegisteredClaims {
		return gjwt.RegisteredClaims{
			ID:        time.Now().Format(time.RFC3339Nano),
			Subject:   "sub-" + username,
			IssuedAt:  gjwt.NewNumericDate(now),
			ExpiresAt: gjwt.NewNumericDate(now.Add(ttl)),
		}
	}
	sess, err := session.Restore(
		signToken(t, jwt.Claims{IDTokenUsername: username, TokenUse: jwt.TokenUseID, RegisteredClaims: registered()}),
		signToken(t, jwt.Claims{AccessTokenUsername: username, TokenUse: jwt.TokenUseAccess, RegisteredClaims: registered()}),
		"refresh-"+username,
		0,
	)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	return sess
}
