package cognito

import (
	"time"
)

// ChallengeKind tags the outcome of an authentication exchange.
type ChallengeKind int

const (
	// ChallengeNone means the exchange authenticated the user; Tokens is set.
	ChallengeNone ChallengeKind = iota
	// ChallengeSMSMFA requests an SMS-delivered code.
	ChallengeSMSMFA
	// ChallengeSoftwareTokenMFA requests an authenticator-app code.
	ChallengeSoftwareTokenMFA
	// ChallengeNewPassword requires a password change before login completes.
	ChallengeNewPassword
	// ChallengeUnsupported is any challenge this module cannot answer.
	ChallengeUnsupported
)

func (k ChallengeKind) String() string {
	switch k {
	case ChallengeNone:
		return "NONE"
	case ChallengeSMSMFA:
		return "SMS_MFA"
	case ChallengeSoftwareTokenMFA:
		return "SOFTWARE_TOKEN_MFA"
	case ChallengeNewPassword:
		return "NEW_PASSWORD_REQUIRED"
	default:
		return "UNSUPPORTED"
	}
}

// IsMFA reports whether k is one of the MFA challenges.
func (k ChallengeKind) IsMFA() bool {
	return k == ChallengeSMSMFA || k == ChallengeSoftwareTokenMFA
}

// Tokens is the token set issued by a successful exchange.
type Tokens struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Challenge is the tagged result of InitiateAuth and the challenge responses. Exactly
// one branch is meaningful per Kind.
type Challenge struct {
	Kind ChallengeKind
	// Name is the raw provider challenge name, empty for ChallengeNone.
	Name string
	// Session is the opaque continuation for the next challenge response.
	Session string

	Tokens *Tokens

	// UserAttributes and RequiredAttributes are set for ChallengeNewPassword.
	UserAttributes     map[string]string
	RequiredAttributes []string

	// Destination is the masked delivery target of an SMS code, when reported.
	Destination string
}

// Attribute is one user pool attribute.
type Attribute struct {
	Name  string
	Value string
}

// CodeDelivery describes where a verification code was sent.
type CodeDelivery struct {
	Destination    string
	DeliveryMedium string
	AttributeName  string
}

// SignUpResult is the outcome of a successful registration.
type SignUpResult struct {
	UserConfirmed bool
	UserSub       string
	Delivery      *CodeDelivery
}

// ServiceCredentials are temporary credentials issued by the identity pool.
type ServiceCredentials struct {
	IdentityID      string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}

// NeedsRefresh reports whether c is absent or expires within window of now.
func (c *ServiceCredentials) NeedsRefresh(now time.Time, window time.Duration) bool {
	if c == nil || c.AccessKeyID == "" {
		return true
	}
	if c.Expiration.IsZero() {
		return false
	}
	return !now.Add(window).Before(c.Expiration)
}

// String redacts the secret parts of c.
func (c *ServiceCredentials) String() string {
	if c == nil {
		return "<nil>"
	}
	return "ServiceCredentials{IdentityID:" + c.IdentityID + " AccessKeyID:" + c.AccessKeyID + " Secret:[redacted]}"
}
