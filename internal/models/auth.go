package models

import "time"

// RegisterRequest is the body of POST /api/v1/auth/register
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email,max=254"`
	Password string  `json:"password" binding:"required,min=8,max=72"` // bcrypt ignores bytes past 72
	Name     *string `json:"name,omitempty" binding:"omitempty,max=100"`
}

// LoginRequest is the body of POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the signed-in account and its access token
type AuthResponse struct {
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	Name       *string   `json:"name,omitempty"`
	HasProfile bool      `json:"hasProfile"`
	CreatedAt  time.Time `json:"createdAt"`
	Token      string    `json:"token"`
}

type RegisterResponse struct {
	Message string       `json:"message"`
	User    AuthResponse `json:"user"`
}
