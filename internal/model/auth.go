package model

import "github.com/golang-jwt/jwt/v5"

// AuthClaims are the claims this service expects in bearer tokens
// minted by the platform identity layer.
type AuthClaims struct {
	UserID    string `json:"uid"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}
