package auth

import (
	"time"

	"github.com/tehraja/backend/internal/infrastructure/auth"
)

// LoginRequest carries staff credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

// StaffInfo describes the signed-in staff member
type StaffInfo struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        auth.Role `json:"role"`
}

// LoginResponse is returned on a successful login
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Staff       StaffInfo `json:"staff"`
}
