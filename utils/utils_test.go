package utils

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	tok, err := tm.GenerateJWT("u1", "a@b.com", "retailer")
	require.NoError(t, err)

	claims, err := tm.ParseAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "retailer", claims.Role)

	_, err = tm.ParseReset(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("other", time.Hour).ParseAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiry(t *testing.T) {
	tm := NewTokenManager("secret", -time.Minute)
	tok, err := tm.GenerateJWT("u1", "a@b.com", "customer")
	require.NoError(t, err)
	_, err = tm.ParseAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{UserID: "u1", Role: "admin", Purpose: purposeAccess}
	claims.ExpiresAt = time.Now().Add(time.Hour).Unix()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).ParseAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	tok, err := tm.GenerateResetToken("a@b.com")
	require.NoError(t, err)
	claims, err := tm.ParseReset(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)
	_, err = tm.ParseAccess(tok)
	assert.Error(t, err)
}

func TestGenerateOTP(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		assert.True(t, ValidOTP(code), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
	assert.True(t, CodesEqual("012345", "012345"))
	assert.False(t, CodesEqual("012345", "012346"))
	assert.False(t, CodesEqual("012345", "01234"))
}

func TestValidation(t *testing.T) {
	email, ok := NormalizeEmail("  Asha@Example.COM ")
	assert.True(t, ok)
	assert.Equal(t, "asha@example.com", email)
	_, ok = NormalizeEmail("asha@")
	assert.False(t, ok)

	assert.True(t, ValidPassword("abcdefg1"))
	assert.False(t, ValidPassword("abcdefgh"))
	assert.False(t, ValidPassword("12345678"))
	assert.False(t, ValidPassword("a1"))
	assert.False(t, ValidPassword(strings.Repeat("a1", 33)))

	cur, ok := NormalizeCurrency(" INR ")
	assert.True(t, ok)
	assert.Equal(t, "inr", cur)
	_, ok = NormalizeCurrency("rupee")
	assert.False(t, ok)

	hash, err := HashPassword("abcdefg1")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "abcdefg1"))
	assert.False(t, CheckPassword(hash, "abcdefg2"))
}

type recordingMailer struct {
	to, subject, html string
}

func (m *recordingMailer) Send(_ context.Context, to, subject, html string) error {
	m.to, m.subject, m.html = to, subject, html
	return nil
}

func TestEmailService_SendOTP(t *testing.T) {
	m := &recordingMailer{}
	es := NewEmailService(m)

	require.NoError(t, es.SendOTP(context.Background(), "a@b.com", "123456", 10*time.Minute, false))
	assert.Equal(t, "a@b.com", m.to)
	assert.Equal(t, "Verify Your Email", m.subject)
	assert.Contains(t, m.html, "123456")
	assert.Contains(t, m.html, "10 minutes")

	require.NoError(t, es.SendOTP(context.Background(), "a@b.com", "654321", 10*time.Minute, true))
	assert.Equal(t, "Reset Your Password", m.subject)
}
