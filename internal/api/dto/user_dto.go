package dto

import "time"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyOTPRequest payload for verify-otp.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// EmailRequest carries a bare email for resend-otp and forgot-password.
type EmailRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest payload for reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// ChangePasswordRequest payload for change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// PasswordConfirmRequest re-authenticates destructive actions.
type PasswordConfirmRequest struct {
	Password string `json:"password"`
}

// ProfileUpdateRequest payload; omitted fields stay unchanged.
type ProfileUpdateRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Bio    *string `json:"bio"`
	Avatar *string `json:"avatar"`
}

// UserStatusRequest toggles activation.
type UserStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
	Phone      string    `json:"phone"`
	Bio        string    `json:"bio"`
	Avatar     string    `json:"avatar"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UserListResponse is one page of accounts.
type UserListResponse struct {
	Message string         `json:"message"`
	Users   []UserResponse `json:"users"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
	Pages   int            `json:"pages"`
}

// AuthResponse is returned by endpoints that sign a session.
type AuthResponse struct {
	Message    string       `json:"message"`
	Token      string       `json:"token"`
	ExpiresAt  time.Time    `json:"expiresAt"`
	IsVerified bool         `json:"isVerified"`
	User       UserResponse `json:"user"`
}
