package envelope

// Code is the closed, machine-readable error code carried by every failed envelope.
type Code string

const (
	CodeUserNotFound          Code = "USER_NOT_FOUND"
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeUserNotConfirmed      Code = "USER_NOT_CONFIRMED"
	CodePasswordResetRequired Code = "PASSWORD_RESET_REQUIRED"
	CodeTooManyRequests       Code = "TOO_MANY_REQUESTS"
	CodeInvalidRequest        Code = "INVALID_REQUEST"
	CodeInternalError         Code = "INTERNAL_ERROR"
	CodeUserExists            Code = "USER_EXISTS"
	CodeInvalidPassword       Code = "INVALID_PASSWORD"
	CodeInvalidCode           Code = "INVALID_CODE"
	CodeExpiredCode           Code = "EXPIRED_CODE"
	CodeLimitExceeded         Code = "LIMIT_EXCEEDED"
	CodeMFAFailed             Code = "MFA_FAILED"
	CodeMFARequired           Code = "MFA_REQUIRED"
	CodeInvalidSession        Code = "INVALID_SESSION"
	CodeDynamoDBError         Code = "DYNAMODB_ERROR"
)

var allCodes = []Code{
	CodeUserNotFound,
	CodeUnauthorized,
	CodeUserNotConfirmed,
	CodePasswordResetRequired,
	CodeTooManyRequests,
	CodeInvalidRequest,
	CodeInternalError,
	CodeUserExists,
	CodeInvalidPassword,
	CodeInvalidCode,
	CodeExpiredCode,
	CodeLimitExceeded,
	CodeMFAFailed,
	CodeMFARequired,
	CodeInvalidSession,
	CodeDynamoDBError,
}

// Codes returns every code in declaration order. The slice is a copy.
func Codes() []Code {
	return append([]Code(nil), allCodes...)
}

// Valid reports whether c belongs to the closed code set.
func (c Code) Valid() bool {
	for _, known := range allCodes {
		if c == known {
			return true
		}
	}
	return false
}

// Soft reports whether c describes a "needs more input" outcome rather than a failure.
func (c Code) Soft() bool { return c == CodeMFARequired }

// Class groups codes into the taxonomy used for logs and metrics labels.
func Class(c Code) string {
	switch c {
	case CodeInvalidRequest, CodeInvalidPassword, CodeInvalidCode, CodeExpiredCode, CodeInvalidSession:
		return "client_input"
	case CodeUserExists, CodeUserNotFound, CodeUserNotConfirmed, CodePasswordResetRequired:
		return "state_conflict"
	case CodeTooManyRequests, CodeLimitExceeded:
		return "rate_limit"
	case CodeUnauthorized, CodeMFAFailed:
		return "auth_failure"
	case CodeMFARequired:
		return "soft_redirect"
	default:
		return "catch_all"
	}
}
