package dto

import "time"

// LoginRequest is the JSON body for POST /api/auth/login.
// Blank fields are rejected as invalid credentials, not as a bad request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
	Roles   []string  `json:"roles"`
}

// WhoAmIResponse echoes the identity carried by the presented token.
type WhoAmIResponse struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// MessageResponse is the generic error body.
type MessageResponse struct {
	Message string `json:"message"`
}
