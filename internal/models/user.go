package models

import "time"

// AnonymousUserID owns attempts recorded while identity verification is off.
const AnonymousUserID = "anonymous"

// Identity is the verified caller of a request.
type Identity struct {
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ErrorDetailResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
