package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are the identity provider claims the server relies on.
// Subject scopes every chat and preference record.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email,omitempty"`
}
