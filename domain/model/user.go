package model

import (
	"time"

	"github.com/golang-jwt/jwt"
)

type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	IsAdmin      bool       `json:"is_admin"`
	ActivatedAt  *time.Time `json:"activated_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// UserClaims is the payload of the session token.
type UserClaims struct {
	jwt.StandardClaims
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type Activation struct {
	ID          int
	UserID      int
	TokenHash   string
	ExpiresAt   time.Time
	ActivatedAt *time.Time
	CreatedAt   time.Time
}

type PasswordReset struct {
	ID        int
	UserID    int
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
