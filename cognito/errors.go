package cognito

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"
)

// Provider error codes this module branches on.
const (
	CodeNetworking            = "NetworkingError"
	CodeRequestCanceled       = "RequestCanceled"
	CodeUsernameExists        = "UsernameExistsException"
	CodeInvalidParameter      = "InvalidParameterException"
	CodeInvalidPassword       = "InvalidPasswordException"
	CodeNotAuthorized         = "NotAuthorizedException"
	CodeCodeMismatch          = "CodeMismatchException"
	CodeExpiredCode           = "ExpiredCodeException"
	CodeUserNotFound          = "UserNotFoundException"
	CodeUserNotConfirmed      = "UserNotConfirmedException"
	CodePasswordResetRequired = "PasswordResetRequiredException"
	CodeUnsupportedChallenge  = "UnsupportedChallenge"
	CodeMissingCredentials    = "MissingCredentials"
	CodeMissingAuthentication = "MissingAuthenticationResult"
)

var (
	// ErrMissingRegion is returned by New when no region is configured.
	ErrMissingRegion = errors.New("cognito region is required")
	// ErrMissingClientID is returned by New when no app client id is configured.
	ErrMissingClientID = errors.New("cognito user pool client id is required")
	// ErrMissingIdentityPool is returned by NewIdentityPool without a pool id.
	ErrMissingIdentityPool = errors.New("cognito identity pool id is required")
)

// ServiceError is a provider failure with its raw error code.
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the provider code carried by err, or "" when err is not a
// *ServiceError.
func ErrorCode(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	return ErrorCode(err) == CodeNetworking
}

// IsRejection reports whether err is the provider refusing the presented credentials
// or user, as opposed to a failure that may succeed on retry.
func IsRejection(err error) bool {
	switch ErrorCode(err) {
	case CodeNotAuthorized, CodeUserNotFound, CodeUserNotConfirmed, CodePasswordResetRequired:
		return true
	default:
		return false
	}
}

// newServiceError builds a provider-side failure that did not come from the SDK.
func newServiceError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// convertError maps an SDK error into a *ServiceError.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &ServiceError{Code: apiErr.ErrorCode(), Message: apiErr.ErrorMessage(), Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Code: CodeRequestCanceled, Message: err.Error(), Err: err}
	}
	return &ServiceError{Code: CodeNetworking, Message: err.Error(), Err: err}
}
