package goCognito

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/MrEthical07/goCognito/cognito"
	"github.com/MrEthical07/goCognito/internal/flows"
	"github.com/MrEthical07/goCognito/session"
)

// Authenticator runs the login, registration and account flows of one user handle.
//
// The handle is resolved lazily. Supplying a different username replaces it; calls
// that take no username reuse the cached handle, so multi-step flows such as
// "Login, then ValidateMFAToken" need the username only once. A method that needs a
// handle when none is cached returns ErrNoUserContext.
type Authenticator struct {
	pool       *UserPool
	classifier RegistrationClassifier
	tel        *telemetry
	now        func() time.Time

	mu   sync.Mutex
	user *User
}

func newAuthenticator(pool *UserPool, classifier RegistrationClassifier, tel *telemetry, user *User) *Authenticator {
	if classifier == nil {
		classifier = DefaultRegistrationClassifier
	}
	return &Authenticator{
		pool:       pool,
		classifier: classifier,
		tel:        tel,
		now:        time.Now,
		user:       user,
	}
}

// LoginResult is the outcome of Login, CompleteChangePassword or ValidateMFAToken.
// Exactly one Code is set and only the fields of that code are populated.
type LoginResult struct {
	Code LoginCode

	// Name and Session are set for LoginSuccess.
	Name    string
	Session *session.Session

	// ChallengeKind is set for LoginMFARequired and LoginChangePasswordRequired.
	ChallengeKind cognito.ChallengeKind
	// Attributes and RequiredAttributes are set for LoginChangePasswordRequired.
	Attributes         map[string]string
	RequiredAttributes []string

	// ErrorCode and Err are set for LoginError.
	ErrorCode string
	Err       error
}

// UserData is the sign-up input. Empty Email, Phone and Locale are not sent.
type UserData struct {
	Username string
	Password string
	Email    string
	// Phone is an E.164 number, sent as phone_number.
	Phone  string
	Locale string
	// Attributes are extra user pool attributes, sent in name order.
	Attributes map[string]string
}

// RegistrationResult is the outcome of Register.
type RegistrationResult struct {
	Code RegistrationCode

	User          *User
	UserConfirmed bool
	UserSub       string
	Delivery      *cognito.CodeDelivery

	ErrorCode string
	Err       error
}

// User returns the cached user handle, or nil.
func (a *Authenticator) User() *User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

// resolveUser returns the handle for username without caching it. An empty username
// resolves to the cached handle.
func (a *Authenticator) resolveUser(username string) (*User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if username != "" {
		if a.user != nil && a.user.Username() == username {
			return a.user, nil
		}
		return a.pool.NewUser(username), nil
	}
	if a.user == nil {
		return nil, ErrNoUserContext
	}
	return a.user, nil
}

func (a *Authenticator) bind(user *User) {
	a.mu.Lock()
	a.user = user
	a.mu.Unlock()
}

func (a *Authenticator) loginDeps() flows.LoginDeps {
	return flows.LoginDeps{Service: a.pool.service}
}

/*
====================================
LOGIN FLOWS
====================================
*/

type loginStep int

const (
	loginStepPassword loginStep = iota
	loginStepNewPassword
	loginStepMFA
)

// Login starts password authentication. A username different from the cached
// handle's replaces the handle.
func (a *Authenticator) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := a.resolveUser(username)
	if err != nil {
		return LoginResult{}, err
	}
	a.bind(user)

	res := flows.RunLogin(ctx, user.Username(), password, a.loginDeps())
	return a.settleLogin(ctx, user, res, loginStepPassword), nil
}

// CompleteChangePassword answers a pending new-password challenge of the cached handle.
func (a *Authenticator) CompleteChangePassword(ctx context.Context, newPassword string) (LoginResult, error) {
	return a.CompleteChangePasswordWithAttributes(ctx, newPassword, nil)
}

// CompleteChangePasswordWithAttributes is CompleteChangePassword that also supplies
// values for the attributes the challenge reported as required.
func (a *Authenticator) CompleteChangePasswordWithAttributes(ctx context.Context, newPassword string, attributes map[string]string) (LoginResult, error) {
	user, err := a.resolveUser("")
	if err != nil {
		return LoginResult{}, err
	}
	pending, ok := user.pendingChallenge(func(k cognito.ChallengeKind) bool {
		return k == cognito.ChallengeNewPassword
	})
	if !ok {
		return LoginResult{}, ErrNoPendingChallenge
	}

	res := flows.RunNewPassword(ctx, user.Username(), pending, newPassword, attributes, a.loginDeps())
	return a.settleLogin(ctx, user, res, loginStepNewPassword), nil
}

// ValidateMFAToken answers a pending MFA challenge of the cached handle.
func (a *Authenticator) ValidateMFAToken(ctx context.Context, code string) (LoginResult, error) {
	user, err := a.resolveUser("")
	if err != nil {
		return LoginResult{}, err
	}
	pending, ok := user.pendingChallenge(cognito.ChallengeKind.IsMFA)
	if !ok {
		return LoginResult{}, ErrNoPendingChallenge
	}

	res := flows.RunMFA(ctx, user.Username(), pending, code, a.loginDeps())
	return a.settleLogin(ctx, user, res, loginStepMFA), nil
}

func (a *Authenticator) settleLogin(ctx context.Context, user *User, res flows.LoginResult, step loginStep) LoginResult {
	username := user.Username()

	switch res.Outcome {
	case flows.LoginOutcomeSuccess:
		sess, err := session.NewAt(res.Tokens.IDToken, res.Tokens.AccessToken, res.Tokens.RefreshToken, a.now())
		if err != nil {
			user.setPending(nil)
			return a.loginFailure(ctx, username, step, cognito.CodeMissingAuthentication, err)
		}
		user.setSession(sess)
		if step == loginStepMFA {
			a.tel.inc(MetricMFASuccess)
			a.tel.emitAudit(ctx, auditEventMFASuccess, true, username, "", nil)
		}
		a.tel.inc(MetricLoginSuccess)
		a.tel.emitAudit(ctx, auditEventLoginSuccess, true, username, "", nil)
		return LoginResult{Code: LoginSuccess, Name: username, Session: sess}

	case flows.LoginOutcomeMFARequired:
		user.setPending(res.Pending)
		a.tel.inc(MetricMFARequired)
		a.tel.emitAudit(ctx, auditEventMFARequired, true, username, "", map[string]string{
			"challenge": res.Pending.Kind.String(),
		})
		return LoginResult{Code: LoginMFARequired, ChallengeKind: res.Pending.Kind}

	case flows.LoginOutcomeNewPasswordRequired:
		user.setPending(res.Pending)
		a.tel.inc(MetricNewPasswordRequired)
		a.tel.emitAudit(ctx, auditEventPasswordChangeRequired, true, username, "", nil)
		return LoginResult{
			Code:               LoginChangePasswordRequired,
			ChallengeKind:      res.Pending.Kind,
			Attributes:         maps.Clone(res.Pending.UserAttributes),
			RequiredAttributes: slices.Clone(res.Pending.RequiredAttributes),
		}

	default:
		user.setPending(nil)
		return a.loginFailure(ctx, username, step, res.ErrorCode, res.Err)
	}
}

func (a *Authenticator) loginFailure(ctx context.Context, username string, step loginStep, code string, err error) LoginResult {
	if step == loginStepMFA {
		a.tel.inc(MetricMFAFailure)
		a.tel.emitAudit(ctx, auditEventMFAFailure, false, username, code, nil)
	}
	a.tel.inc(MetricLoginFailure)
	a.tel.emitAudit(ctx, auditEventLoginFailure, false, username, code, nil)
	a.tel.logger.InfoContext(ctx, "login rejected", "username", username, "error_code", code)
	return LoginResult{Code: LoginError, ErrorCode: code, Err: err}
}

/*
====================================
REGISTRATION
====================================
*/

// Register signs a new user up. On success the new user's handle becomes the cached
// handle. Provider rejections are classified into the result, never returned as error.
func (a *Authenticator) Register(ctx context.Context, data UserData) (RegistrationResult, error) {
	if data.Username == "" {
		return RegistrationResult{}, ErrUsernameRequired
	}

	out, err := a.pool.service.SignUp(ctx, data.Username, data.Password, registrationAttributes(data))
	if err != nil {
		code := a.classifier.ClassifyRegistration(err)
		errCode := cognito.ErrorCode(err)
		a.tel.inc(MetricRegistrationFailure)
		a.tel.emitAudit(ctx, auditEventRegistrationFailure, false, data.Username, errCode, map[string]string{
			"result": code.String(),
		})
		a.tel.logger.InfoContext(ctx, "registration rejected", "username", data.Username, "error_code", errCode, "result", code.String())
		return RegistrationResult{Code: code, ErrorCode: errCode, Err: err}, nil
	}

	user, _ := a.resolveUser(data.Username)
	a.bind(user)

	a.tel.inc(MetricRegistrationSuccess)
	a.tel.emitAudit(ctx, auditEventRegistrationSuccess, true, data.Username, "", nil)

	return RegistrationResult{
		Code:          RegistrationSuccess,
		User:          user,
		UserConfirmed: out.UserConfirmed,
		UserSub:       out.UserSub,
		Delivery:      out.Delivery,
	}, nil
}

func registrationAttributes(data UserData) []cognito.Attribute {
	attrs := make([]cognito.Attribute, 0, 3+len(data.Attributes))
	if data.Email != "" {
		attrs = append(attrs, cognito.Attribute{Name: "email", Value: data.Email})
	}
	if data.Phone != "" {
		attrs = append(attrs, cognito.Attribute{Name: "phone_number", Value: data.Phone})
	}
	if data.Locale != "" {
		attrs = append(attrs, cognito.Attribute{Name: "locale", Value: data.Locale})
	}
	for _, name := range slices.Sorted(maps.Keys(data.Attributes)) {
		attrs = append(attrs, cognito.Attribute{Name: name, Value: data.Attributes[name]})
	}
	return attrs
}

// ResendRegistrationCode sends a new confirmation code to the cached handle's user.
func (a *Authenticator) ResendRegistrationCode(ctx context.Context) (*cognito.CodeDelivery, error) {
	user, err := a.resolveUser("")
	if err != nil {
		return nil, err
	}
	delivery, err := a.pool.service.ResendConfirmationCode(ctx, user.Username())
	if err != nil {
		a.logFailure(ctx, "resend confirmation code", user.Username(), err)
		return nil, err
	}
	return delivery, nil
}

// ConfirmRegistration confirms a sign-up with code. A non-empty forUsername selects
// the user and becomes the cached handle once the confirmation succeeds.
func (a *Authenticator) ConfirmRegistration(ctx context.Context, code, forUsername string) error {
	user, err := a.resolveUser(forUsername)
	if err != nil {
		return err
	}
	if err := a.pool.service.ConfirmSignUp(ctx, user.Username(), code); err != nil {
		a.logFailure(ctx, "confirm registration", user.Username(), err)
		return err
	}
	a.bind(user)
	a.tel.emitAudit(ctx, auditEventRegistrationConfirm, true, user.Username(), "", nil)
	return nil
}

/*
====================================
PASSWORD & MFA MANAGEMENT
====================================
*/

// BeginResetPassword sends a reset code to username. The handle is cached on success
// so CompleteResetPassword needs no username.
func (a *Authenticator) BeginResetPassword(ctx context.Context, username string) (*cognito.CodeDelivery, error) {
	user, err := a.resolveUser(username)
	if err != nil {
		return nil, err
	}

	delivery, err := a.pool.service.ForgotPassword(ctx, user.Username())
	if err != nil {
		a.tel.emitAudit(ctx, auditEventPasswordResetRequest, false, user.Username(), cognito.ErrorCode(err), nil)
		a.logFailure(ctx, "begin password reset", user.Username(), err)
		return nil, err
	}

	a.bind(user)
	a.tel.inc(MetricPasswordResetRequest)
	a.tel.emitAudit(ctx, auditEventPasswordResetRequest, true, user.Username(), "", nil)
	return delivery, nil
}

// CompleteResetPassword sets newPassword for the cached handle using the reset code.
func (a *Authenticator) CompleteResetPassword(ctx context.Context, code, newPassword string) error {
	user, err := a.resolveUser("")
	if err != nil {
		return err
	}

	if err := a.pool.service.ConfirmForgotPassword(ctx, user.Username(), code, newPassword); err != nil {
		a.tel.emitAudit(ctx, auditEventPasswordResetConfirm, false, user.Username(), cognito.ErrorCode(err), nil)
		a.logFailure(ctx, "complete password reset", user.Username(), err)
		return err
	}

	a.tel.inc(MetricPasswordResetConfirm)
	a.tel.emitAudit(ctx, auditEventPasswordResetConfirm, true, user.Username(), "", nil)
	return nil
}

// UserChangePassword changes the password of the signed-in cached handle.
func (a *Authenticator) UserChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	user, token, err := a.signedInUser()
	if err != nil {
		return err
	}

	if err := a.pool.service.ChangePassword(ctx, token, oldPassword, newPassword); err != nil {
		a.tel.emitAudit(ctx, auditEventPasswordChange, false, user.Username(), cognito.ErrorCode(err), nil)
		a.logFailure(ctx, "change password", user.Username(), err)
		return err
	}

	a.tel.inc(MetricPasswordChange)
	a.tel.emitAudit(ctx, auditEventPasswordChange, true, user.Username(), "", nil)
	return nil
}

// EnableMFA turns SMS MFA on for the signed-in cached handle.
func (a *Authenticator) EnableMFA(ctx context.Context) error {
	return a.setMFA(ctx, true)
}

// DisableMFA turns SMS MFA off for the signed-in cached handle.
func (a *Authenticator) DisableMFA(ctx context.Context) error {
	return a.setMFA(ctx, false)
}

func (a *Authenticator) setMFA(ctx context.Context, enabled bool) error {
	user, token, err := a.signedInUser()
	if err != nil {
		return err
	}

	meta := map[string]string{"sms_mfa": "disabled"}
	if enabled {
		meta["sms_mfa"] = "enabled"
	}
	if err := a.pool.service.SetSMSMFA(ctx, token, enabled); err != nil {
		a.tel.emitAudit(ctx, auditEventMFAPreferenceChange, false, user.Username(), cognito.ErrorCode(err), meta)
		a.logFailure(ctx, "set mfa preference", user.Username(), err)
		return err
	}
	a.tel.emitAudit(ctx, auditEventMFAPreferenceChange, true, user.Username(), "", meta)
	return nil
}

func (a *Authenticator) signedInUser() (*User, string, error) {
	user, err := a.resolveUser("")
	if err != nil {
		return nil, "", err
	}
	token := user.accessToken()
	if token == "" {
		return nil, "", ErrNotAuthenticated
	}
	return user, token, nil
}

func (a *Authenticator) logFailure(ctx context.Context, op, username string, err error) {
	a.tel.logger.InfoContext(ctx, op+" failed", "username", username, "error_code", cognito.ErrorCode(err))
}
