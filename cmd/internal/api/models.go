package api

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyAccountRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifyMFARequest struct {
	Email     string `json:"email"`
	Code      string `json:"code"`
	Session   string `json:"session"`
	Challenge string `json:"challenge"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type confirmForgotPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}
