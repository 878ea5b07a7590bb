package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const (
	purposeAccess = "access"
	purposeReset  = "reset"
)

// ResetTokenTTL bounds how long a password reset token is accepted
const ResetTokenTTL = 15 * time.Minute

var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims
type Claims struct {
	UserID  string `json:"userId,omitempty"`
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwt.StandardClaims
}

// TokenManager signs and verifies HS256 tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (tm *TokenManager) sign(claims *Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = now.Add(ttl).Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// GenerateJWT generates an access token for a user
func (tm *TokenManager) GenerateJWT(userID, email, role string) (string, error) {
	return tm.sign(&Claims{UserID: userID, Email: email, Role: role, Purpose: purposeAccess}, tm.ttl)
}

// GenerateResetToken issues a token that only ResetPassword accepts
func (tm *TokenManager) GenerateResetToken(email string) (string, error) {
	return tm.sign(&Claims{Email: email, Purpose: purposeReset}, ResetTokenTTL)
}

func (tm *TokenManager) parse(tokenStr, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseAccess validates an access token
func (tm *TokenManager) ParseAccess(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, purposeAccess)
}

// ParseReset validates a password reset token
func (tm *TokenManager) ParseReset(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, purposeReset)
}
