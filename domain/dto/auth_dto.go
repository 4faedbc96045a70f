package dto

// RegisterRequest represents request for account registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents request for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// EmailRequest is used by resend-activation and request-password-reset
type EmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest represents request for setting a new password
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LinkQuery is the query string of the links mailed to users.
type LinkQuery struct {
	Token string `url:"token"`
	Email string `url:"email,omitempty"`
}

// ActivationStatus values returned by the activation endpoint
const (
	ActivationSuccess = "success"
	ActivationAlready = "already"
	ActivationExpired = "expired"
	ActivationInvalid = "invalid"
)
