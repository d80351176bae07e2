package dto

import "github.com/noah-isme/id-portal/internal/models"

// OfficerLoginRequest is the officer sign-in payload.
type OfficerLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginRequest is the admin sign-in payload.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// OfficerSignupRequest is the officer account request form.
type OfficerSignupRequest struct {
	FullName        string `json:"fullName"`
	IDNumber        string `json:"idNumber"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phoneNumber"`
	Station         string `json:"station" validate:"required"`
	Constituency    string `json:"constituency" validate:"required"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginResponse carries the portal session token and profile.
type LoginResponse struct {
	Token     string                 `json:"token"`
	Role      models.Role            `json:"role"`
	ExpiresAt string                 `json:"expires_at"`
	Officer   *models.OfficerProfile `json:"officer,omitempty"`
	Admin     *models.AdminProfile   `json:"admin,omitempty"`
	Notice    *Notice                `json:"-"`
}

// SignupResponse acknowledges an officer signup.
type SignupResponse struct {
	Message string  `json:"message"`
	Notice  *Notice `json:"-"`
}
