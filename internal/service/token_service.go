package service

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-item-recovery/internal/model"
	"go-item-recovery/pkg/apierror"
)

// TokenService validates the bearer tokens the platform identity layer
// mints for users and tooling. This service holds no credential store;
// it only checks signatures and claims.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

func (s *TokenService) ValidateToken(tokenString string, expectedType string) (*model.AuthClaims, error) {
	claims := &model.AuthClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierror.New("UNAUTHORIZED", "invalid token signing method", "", http.StatusUnauthorized)
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apierror.New("UNAUTHORIZED", "invalid or expired token", "", http.StatusUnauthorized)
	}

	if expectedType != "" && claims.TokenType != expectedType {
		return nil, apierror.New("UNAUTHORIZED", "unexpected token type", "", http.StatusUnauthorized)
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, apierror.New("UNAUTHORIZED", "token carries no subject", "", http.StatusUnauthorized)
	}

	return claims, nil
}

// IssueServiceToken mints a short-lived token for operational tooling
// (the event source, admin scripts). User tokens come from the identity
// layer, not from here.
func (s *TokenService) IssueServiceToken(subject string, role string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	now := time.Now().UTC()
	claims := model.AuthClaims{
		UserID:    subject,
		Role:      role,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	return signed, nil
}
