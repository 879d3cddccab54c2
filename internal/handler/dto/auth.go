// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/taskloom/taskloom/internal/model"

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse confirms a successful registration.
// Registration does not log the user in; no token is returned.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session token and the public profile.
type LoginResponse struct {
	Token string         `json:"token"`
	User  *model.Profile `json:"user"`
}

// UpdateProfileRequest represents the request body for a profile update.
type UpdateProfileRequest struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// MessageResponse is a generic success acknowledgment.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
