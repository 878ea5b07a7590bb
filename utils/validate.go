package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var (
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reOTP      = regexp.MustCompile(`^[0-9]{6}$`)
	reCurrency = regexp.MustCompile(`^[a-z]{3}$`)
)

// NormalizeEmail trims and lower-cases an address and reports if it is well formed
func NormalizeEmail(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

func ValidOTP(s string) bool { return reOTP.MatchString(s) }

// NormalizeCurrency lower-cases an ISO 4217 code
func NormalizeCurrency(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, reCurrency.MatchString(s)
}

// ValidPassword requires 8..64 characters with a letter and a digit
func ValidPassword(s string) bool {
	if len(s) < 8 || len(s) > 64 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
