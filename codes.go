package goCognito

import "strconv"

// LoginCode is the closed set of login outcomes. Values are a stable contract and are
// never reordered or reused.
type LoginCode int

const (
	// LoginSuccess carries a completed session and the identity name.
	LoginSuccess LoginCode = 1
	// LoginError carries the provider's raw error code; the attempt is over.
	LoginError LoginCode = 2
	// LoginMFARequired means ValidateMFAToken must be called next.
	LoginMFARequired LoginCode = 3
	// LoginChangePasswordRequired means CompleteChangePassword must be called next.
	LoginChangePasswordRequired LoginCode = 4
)

func (c LoginCode) String() string {
	switch c {
	case LoginSuccess:
		return "SUCCESS"
	case LoginError:
		return "ERROR"
	case LoginMFARequired:
		return "MFA_REQUIRED"
	case LoginChangePasswordRequired:
		return "CHANGE_PASSWORD_REQUIRED"
	default:
		return "LoginCode(" + strconv.Itoa(int(c)) + ")"
	}
}

// RegistrationCode is the closed set of registration outcomes. Values are a stable
// contract and are never reordered or reused.
type RegistrationCode int

const (
	RegistrationSuccess            RegistrationCode = 0
	RegistrationInvalidUsername    RegistrationCode = 1
	RegistrationUsernameExists     RegistrationCode = 2
	RegistrationInvalidPassword    RegistrationCode = 3
	RegistrationInvalidPhoneNumber RegistrationCode = 4
	// RegistrationPhoneNumberExists is reserved. The default classifier never emits it.
	RegistrationPhoneNumberExists RegistrationCode = 5
	RegistrationFailureGeneric    RegistrationCode = 100
)

func (c RegistrationCode) String() string {
	switch c {
	case RegistrationSuccess:
		return "SUCCESS"
	case RegistrationInvalidUsername:
		return "INVALID_USERNAME"
	case RegistrationUsernameExists:
		return "USERNAME_EXISTS"
	case RegistrationInvalidPassword:
		return "INVALID_PASSWORD"
	case RegistrationInvalidPhoneNumber:
		return "INVALID_PHONE_NUMBER"
	case RegistrationPhoneNumberExists:
		return "PHONE_NUMBER_EXISTS"
	case RegistrationFailureGeneric:
		return "FAILURE_GENERIC"
	default:
		return "RegistrationCode(" + strconv.Itoa(int(c)) + ")"
	}
}
