package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access token payload.
type JWTClaims struct {
	UserID   string   `json:"uid"`
	Username string   `json:"username"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}

// UpdateProfileRequest carries profile edits; the password pair is optional
// and only applied when both fields are present.
type UpdateProfileRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	OldPassword string `json:"old_password,omitempty"`
	NewPassword string `json:"new_password,omitempty" validate:"omitempty,min=8"`
}
