package goCognito

import (
	"errors"
	"strings"

	"github.com/MrEthical07/goCognito/cognito"
)

// RegistrationClassifier maps a sign-up failure to a RegistrationCode.
//
// The default classifier matches substrings of provider validation messages, which
// are not a stable API. Replace it with [Builder.WithRegistrationClassifier] when the
// provider wording changes.
type RegistrationClassifier interface {
	ClassifyRegistration(err error) RegistrationCode
}

// RegistrationClassifierFunc adapts a function to RegistrationClassifier.
type RegistrationClassifierFunc func(err error) RegistrationCode

func (f RegistrationClassifierFunc) ClassifyRegistration(err error) RegistrationCode {
	return f(err)
}

// DefaultRegistrationClassifier checks structured error codes first and falls back to
// case-insensitive matching on InvalidParameterException messages. It never returns
// RegistrationPhoneNumberExists.
var DefaultRegistrationClassifier RegistrationClassifier = RegistrationClassifierFunc(classifyRegistration)

func classifyRegistration(err error) RegistrationCode {
	if err == nil {
		return RegistrationSuccess
	}

	switch cognito.ErrorCode(err) {
	case cognito.CodeUsernameExists:
		return RegistrationUsernameExists
	case cognito.CodeInvalidPassword:
		return RegistrationInvalidPassword
	case cognito.CodeInvalidParameter:
		return classifyInvalidParameter(err)
	default:
		return RegistrationFailureGeneric
	}
}

func classifyInvalidParameter(err error) RegistrationCode {
	msg := err.Error()
	var se *cognito.ServiceError
	if errors.As(err, &se) {
		msg = se.Message
	}
	msg = strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "email"):
		return RegistrationInvalidUsername
	case strings.Contains(msg, "password"):
		return RegistrationInvalidPassword
	case strings.Contains(msg, "phone number"):
		return RegistrationInvalidPhoneNumber
	default:
		return RegistrationFailureGeneric
	}
}
