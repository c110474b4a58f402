package envelope

import (
	"encoding/json"
	"net/http"
)

// CodeStatus maps an error code to its HTTP status. Unlisted codes map to 500.
func CodeStatus(c Code) int {
	switch c {
	case CodeUserNotFound:
		return http.StatusNotFound
	case CodeUnauthorized, CodeMFAFailed, CodeInvalidSession:
		return http.StatusUnauthorized
	case CodeUserNotConfirmed, CodePasswordResetRequired:
		return http.StatusForbidden
	case CodeInvalidRequest, CodeInvalidPassword, CodeInvalidCode, CodeExpiredCode, CodeUserExists:
		return http.StatusBadRequest
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Status resolves the HTTP status of an envelope from (isSuccess, code).
//
// Success is always 200. The MFA_REQUIRED soft outcome is error-shaped but is an
// intermediate state the caller continues from, so it is also rendered as 200.
func Status(isSuccess bool, c Code) int {
	if isSuccess || c.Soft() {
		return http.StatusOK
	}
	return CodeStatus(c)
}

// Write serializes env as the JSON body with its mapped status.
func Write[T any](w http.ResponseWriter, env Envelope[T]) {
	WriteStatus(w, env.Status(), env)
}

// WriteStatus serializes env with an explicit status. Used where the transport owns the
// status (bearer rejection), never for operation results.
func WriteStatus[T any](w http.ResponseWriter, status int, env Envelope[T]) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
