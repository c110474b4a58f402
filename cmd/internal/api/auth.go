package api

import (
	"encoding/base64"
	"net/http"

	"usersvc/cmd/internal/envelope"
	"usersvc/cmd/security/token"
)

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodPost) {
		return
	}
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}
	password, ok := h.password(w, r, req.Password)
	if !ok {
		return
	}
	respond(h, w, r, h.auth.Register(r.Context(), req.Email, password))
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodPost) {
		return
	}
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}
	password, ok := h.password(w, r, req.Password)
	if !ok {
		return
	}
	respond(h, w, r, h.auth.Authenticate(r.Context(), req.Email, password))
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodPost) {
		return
	}
	// A missing header reaches the operation as an empty token.
	tok, _ := token.BearerFromHeader(r.Header.Get("Authorization"))
	respond(h, w, r, h.auth.SignOut(r.Context(), tok))
}

func (h *Handler) handleVerifyAccount(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodPost) {
		return
	}
	var req verifyAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	respond(h, w, r, h.auth.ConfirmRegistration(r.Context(), req.Email, req.Code))
}

func (h *Handler) handleVerifyMFA(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodPost) {
		return
	}
	var req verifyMFARequest
	if !h.decode(w, r, &req) {
		return
	}
	respond(h, w, r, h.auth.VerifySecondFactor(r.Context(), req.Email, req.Code, req.Session, req.Challenge))
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodPost) {
		return
	}
	var req forgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	respond(h, w, r, h.auth.InitiatePasswordReset(r.Context(), req.Email))
}

func (h *Handler) handleConfirmForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodPost) {
		return
	}
	var req confirmForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	respond(h, w, r, h.auth.ConfirmPasswordReset(r.Context(), req.Email, req.Code, req.NewPassword))
}

// password applies the optional base64 transport encoding of the password field.
func (h *Handler) password(w http.ResponseWriter, r *http.Request, raw string) (string, bool) {
	if !h.cfg.PasswordBase64 || raw == "" {
		return raw, true
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		h.reject(w, r, http.StatusBadRequest, envelope.CodeInvalidRequest, "Invalid password encoding")
		return "", false
	}
	return string(b), true
}
