package identity

// Failure is the discriminant of a provider failure.
// Values match the provider's exception names so adapters can pass them through.
type Failure string

// Recognized discriminants. Any other value is still carried but never classified.
const (
	FailureUsernameExists        Failure = "UsernameExistsException"
	FailureInvalidPassword       Failure = "InvalidPasswordException"
	FailureInvalidParameter      Failure = "InvalidParameterException"
	FailureTooManyRequests       Failure = "TooManyRequestsException"
	FailureUserNotFound          Failure = "UserNotFoundException"
	FailureNotAuthorized         Failure = "NotAuthorizedException"
	FailureUserNotConfirmed      Failure = "UserNotConfirmedException"
	FailurePasswordResetRequired Failure = "PasswordResetRequiredException"
	FailureCodeMismatch          Failure = "CodeMismatchException"
	FailureExpiredCode           Failure = "ExpiredCodeException"
	FailureLimitExceeded         Failure = "LimitExceededException"
	FailureInvalidSession        Failure = "InvalidSessionException"
)

var knownFailures = map[Failure]struct{}{
	FailureUsernameExists:        {},
	FailureInvalidPassword:       {},
	FailureInvalidParameter:      {},
	FailureTooManyRequests:       {},
	FailureUserNotFound:          {},
	FailureNotAuthorized:         {},
	FailureUserNotConfirmed:      {},
	FailurePasswordResetRequired: {},
	FailureCodeMismatch:          {},
	FailureExpiredCode:           {},
	FailureLimitExceeded:         {},
	FailureInvalidSession:        {},
}

// Known reports whether f is one of the recognized discriminants.
func (f Failure) Known() bool {
	_, ok := knownFailures[f]
	return ok
}
