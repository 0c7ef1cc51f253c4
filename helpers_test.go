package goCognito

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goCognito/cognito"
	"github.com/MrEthical07/goCognito/jwt"
	"github.com/alicebob/miniredis/v2"
	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

// testToken signs a token for username that expires at exp. Every call yields a
// distinct token.
func testToken(t *testing.T, username, use string, exp time.Time) string {
	t.Helper()

	claims := jwt.Claims{
		TokenUse: use,
		RegisteredClaims: gjwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   "sub-" + username,
			IssuedAt:  gjwt.NewNumericDate(time.Now()),
			ExpiresAt: gjwt.NewNumericDate(exp),
		},
	}
	if use == jwt.TokenUseID {
		claims.IDTokenUsername = username
		claims.Email = username + "@example.com"
	} else {
		claims.AccessTokenUsername = username
	}

	s, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("root-test-signing-key-0123456789"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func testTokens(t *testing.T, username string, ttl time.Duration) *cognito.Tokens {
	t.Helper()
	exp := time.Now().Add(ttl)
	return &cognito.Tokens{
		IDToken:      testToken(t, username, jwt.TokenUseID, exp),
		AccessToken:  testToken(t, username, jwt.TokenUseAccess, exp),
		RefreshToken: "refresh-" + username,
	}
}

// stubUserPool is a scripted cognito.UserPoolService. Unset hooks succeed with empty
// results.
type stubUserPool struct {
	initiate    func(username, password string) (*cognito.Challenge, error)
	newPassword func(username, session, newPassword string, attrs map[string]string) (*cognito.Challenge, error)
	mfa         func(username, session, code string, kind cognito.ChallengeKind) (*cognito.Challenge, error)
	refresh     func(username, refreshToken string) (*cognito.Tokens, error)
	signUp      func(username, password string, attrs []cognito.Attribute) (*cognito.SignUpResult, error)
	forgot      func(username string) (*cognito.CodeDelivery, error)
	signOutErr  error

	mu            sync.Mutex
	calls         map[string]int
	signOutTokens []string
	changeTokens  []string
	mfaSettings   []bool
	confirmed     []string
}

func newStubUserPool() *stubUserPool {
	return &stubUserPool{calls: map[string]int{}}
}

func (s *stubUserPool) record(op string) {
	s.mu.Lock()
	s.calls[op]++
	s.mu.Unlock()
}

func (s *stubUserPool) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *stubUserPool) InitiateAuth(_ context.Context, username, password string) (*cognito.Challenge, error) {
	s.record("InitiateAuth")
	if s.initiate == nil {
		return nil, &cognito.ServiceError{Code: cognito.CodeNotAuthorized}
	}
	return s.initiate(username, password)
}

func (s *stubUserPool) RespondToNewPassword(_ context.Context, username, session, newPassword string, attrs map[string]string) (*cognito.Challenge, error) {
	s.record("RespondToNewPassword")
	if s.newPassword == nil {
		return nil, &cognito.ServiceError{Code: cognito.CodeNotAuthorized}
	}
	return s.newPassword(username, session, newPassword, attrs)
}

func (s *stubUserPool) RespondToMFA(_ context.Context, username, session, code string, kind cognito.ChallengeKind) (*cognito.Challenge, error) {
	s.record("RespondToMFA")
	if s.mfa == nil {
		return nil, &cognito.ServiceError{Code: cognito.CodeCodeMismatch}
	}
	return s.mfa(username, session, code, kind)
}

func (s *stubUserPool) RefreshSession(_ context.Context, username, refreshToken string) (*cognito.Tokens, error) {
	s.record("RefreshSession")
	if s.refresh == nil {
		return nil, &cognito.ServiceError{Code: cognito.CodeNotAuthorized}
	}
	return s.refresh(username, refreshToken)
}

func (s *stubUserPool) SignUp(_ context.Context, username, password string, attrs []cognito.Attribute) (*cognito.SignUpResult, error) {
	s.record("SignUp")
	if s.signUp == nil {
		return &cognito.SignUpResult{UserSub: "sub-" + username}, nil
	}
	return s.signUp(username, password, attrs)
}

func (s *stubUserPool) ConfirmSignUp(_ context.Context, username, code string) error {
	s.record("ConfirmSignUp")
	if code != "000000" {
		return &cognito.ServiceError{Code: cognito.CodeCodeMismatch}
	}
	s.mu.Lock()
	s.confirmed = append(s.confirmed, username)
	s.mu.Unlock()
	return nil
}

func (s *stubUserPool) ResendConfirmationCode(_ context.Context, username string) (*cognito.CodeDelivery, error) {
	s.record("ResendConfirmationCode")
	return &cognito.CodeDelivery{Destination: username[:1] + "***@example.com", DeliveryMedium: "EMAIL"}, nil
}

func (s *stubUserPool) ForgotPassword(_ context.Context, username string) (*cognito.CodeDelivery, error) {
	s.record("ForgotPassword")
	if s.forgot == nil {
		return &cognito.CodeDelivery{DeliveryMedium: "EMAIL"}, nil
	}
	return s.forgot(username)
}

func (s *stubUserPool) ConfirmForgotPassword(_ context.Context, _, code, _ string) error {
	s.record("ConfirmForgotPassword")
	if code != "000000" {
		return &cognito.ServiceError{Code: cognito.CodeExpiredCode}
	}
	return nil
}

func (s *stubUserPool) ChangePassword(_ context.Context, accessToken, oldPassword, _ string) error {
	s.record("ChangePassword")
	if oldPassword != "old-pw" {
		return &cognito.ServiceError{Code: cognito.CodeNotAuthorized}
	}
	s.mu.Lock()
	s.changeTokens = append(s.changeTokens, accessToken)
	s.mu.Unlock()
	return nil
}

func (s *stubUserPool) SetSMSMFA(_ context.Context, _ string, enabled bool) error {
	s.record("SetSMSMFA")
	s.mu.Lock()
	s.mfaSettings = append(s.mfaSettings, enabled)
	s.mu.Unlock()
	return nil
}

func (s *stubUserPool) GlobalSignOut(_ context.Context, accessToken string) error {
	s.record("GlobalSignOut")
	s.mu.Lock()
	s.signOutTokens = append(s.signOutTokens, accessToken)
	s.mu.Unlock()
	return s.signOutErr
}

// stubCredentials issues one-hour credentials, resolving the identity id from the
// logins map when none is given.
type stubCredentials struct {
	err   error
	calls atomic.Int32
}

func (s *stubCredentials) Credentials(_ context.Context, identityID string, logins map[string]string) (*cognito.ServiceCredentials, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	if len(logins) != 1 {
		return nil, &cognito.ServiceError{Code: cognito.CodeNotAuthorized}
	}
	if identityID == "" {
		identityID = "eu-west-1:identity-1"
	}
	return &cognito.ServiceCredentials{
		IdentityID:      identityID,
		AccessKeyID:     "ASIATEST",
		SecretAccessKey: "secret",
		SessionToken:    "session",
		Expiration:      time.Now().Add(time.Hour),
	}, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.UserPool = UserPoolConfig{
		Region:     "eu-west-1",
		UserPoolID: "eu-west-1_pool",
		ClientID:   "client-123",
	}
	return cfg
}

func newTestEngine(t *testing.T, svc cognito.UserPoolService, configure func(*Builder)) *Engine {
	t.Helper()

	b := New().
		WithConfig(testConfig()).
		WithUserPoolService(svc).
		WithLogger(quietLogger())
	if configure != nil {
		configure(b)
	}

	engine, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() {
		_ = engine.Close(context.Background())
	})
	return engine
}

// mfaPool scripts a user pool that asks for an SMS code and accepts "123456".
func mfaPool(t *testing.T) *stubUserPool {
	svc := newStubUserPool()
	svc.initiate = func(username, password string) (*cognito.Challenge, error) {
		if password != "good-pw" {
			return nil, &cognito.ServiceError{Code: cognito.CodeNotAuthorized, Message: "Incorrect username or password."}
		}
		return &cognito.Challenge{Kind: cognito.ChallengeSMSMFA, Name: "SMS_MFA", Session: "mfa-session"}, nil
	}
	svc.mfa = func(username, session, code string, kind cognito.ChallengeKind) (*cognito.Challenge, error) {
		if session != "mfa-session" || kind != cognito.ChallengeSMSMFA || code != "123456" {
			return nil, &cognito.ServiceError{Code: cognito.CodeCodeMismatch}
		}
		return &cognito.Challenge{Kind: cognito.ChallengeNone, Tokens: testTokens(t, username, time.Hour)}, nil
	}
	return svc
}
