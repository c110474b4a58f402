package authflow

import (
	"usersvc/cmd/identity"
	"usersvc/cmd/internal/envelope"
)

// Operation names the context a provider failure was raised in.
type Operation string

const (
	OpRegister              Operation = "register"
	OpAuthenticate          Operation = "authenticate"
	OpSignOut               Operation = "sign_out"
	OpConfirmRegistration   Operation = "confirm_registration"
	OpInitiatePasswordReset Operation = "initiate_password_reset"
	OpConfirmPasswordReset  Operation = "confirm_password_reset"
	OpVerifySecondFactor    Operation = "verify_second_factor"
)

// Operations returns every operation in a stable order.
func Operations() []Operation {
	return []Operation{
		OpRegister,
		OpAuthenticate,
		OpSignOut,
		OpConfirmRegistration,
		OpInitiatePasswordReset,
		OpConfirmPasswordReset,
		OpVerifySecondFactor,
	}
}

type rule struct {
	kind    identity.Failure
	code    envelope.Code
	message string
}

var (
	ruleUserNotFound = rule{identity.FailureUserNotFound, envelope.CodeUserNotFound, "User not found"}
	ruleCodeMismatch = rule{identity.FailureCodeMismatch, envelope.CodeInvalidCode, "Invalid verification code"}
	ruleExpiredCode  = rule{identity.FailureExpiredCode, envelope.CodeExpiredCode, "Verification code has expired"}
)

// Ordered per-operation tables; first match wins.
var rules = map[Operation][]rule{
	OpRegister: {
		{identity.FailureUsernameExists, envelope.CodeUserExists, "User with this email already exists"},
		{identity.FailureInvalidPassword, envelope.CodeInvalidPassword, "Password does not meet requirements"},
		{identity.FailureInvalidParameter, envelope.CodeInvalidRequest, "Invalid email format"},
		{identity.FailureTooManyRequests, envelope.CodeTooManyRequests, "Too many signup attempts. Please try again later"},
	},
	OpAuthenticate: {
		ruleUserNotFound,
		{identity.FailureNotAuthorized, envelope.CodeUnauthorized, "Incorrect email or password"},
		{identity.FailureUserNotConfirmed, envelope.CodeUserNotConfirmed, "Account not verified. Please confirm your email"},
		{identity.FailurePasswordResetRequired, envelope.CodePasswordResetRequired, "Password reset required. Please check your email"},
		{identity.FailureTooManyRequests, envelope.CodeTooManyRequests, "Too many attempts. Please try again later"},
	},
	OpSignOut: nil,
	OpConfirmRegistration: {
		ruleUserNotFound,
		ruleCodeMismatch,
		ruleExpiredCode,
		{identity.FailureTooManyRequests, envelope.CodeTooManyRequests, "Too many attempts. Please try again later"},
	},
	OpInitiatePasswordReset: {
		ruleUserNotFound,
		{identity.FailureLimitExceeded, envelope.CodeLimitExceeded, "Too many password reset attempts. Please try again later"},
	},
	OpConfirmPasswordReset: {
		ruleUserNotFound,
		ruleCodeMismatch,
		ruleExpiredCode,
		{identity.FailureInvalidPassword, envelope.CodeInvalidPassword, "Password does not meet requirements"},
	},
	OpVerifySecondFactor: {
		{identity.FailureCodeMismatch, envelope.CodeInvalidCode, "Invalid MFA code"},
		{identity.FailureExpiredCode, envelope.CodeExpiredCode, "MFA code has expired"},
		{identity.FailureNotAuthorized, envelope.CodeUnauthorized, "MFA verification failed"},
		{identity.FailureInvalidSession, envelope.CodeInvalidSession, "Session expired. Please sign in again"},
	},
}

var fallbackMessages = map[Operation]string{
	OpRegister:              "Failed to create account",
	OpAuthenticate:          "Authentication service unavailable",
	OpSignOut:               "Failed to sign out",
	OpConfirmRegistration:   "Failed to confirm account",
	OpInitiatePasswordReset: "Failed to initiate password reset",
	OpConfirmPasswordReset:  "Failed to reset password",
	OpVerifySecondFactor:    "MFA verification service unavailable",
}

const defaultFallbackMessage = "Internal server error"

// Classify maps a provider failure raised by op onto an envelope error.
// It is total and deterministic: failures without a discriminant, or with one the
// operation's table does not list, become INTERNAL_ERROR with a generic message.
// The provider's own error text is never copied into the result.
func Classify(op Operation, err error) envelope.Error {
	if kind, ok := identity.KindOf(err); ok {
		for _, r := range rules[op] {
			if r.kind == kind {
				return envelope.Error{Code: r.code, Message: r.message}
			}
		}
	}
	return Fallback(op)
}

// Fallback returns the INTERNAL_ERROR result for op.
func Fallback(op Operation) envelope.Error {
	msg, ok := fallbackMessages[op]
	if !ok {
		msg = defaultFallbackMessage
	}
	return envelope.Error{Code: envelope.CodeInternalError, Message: msg}
}
