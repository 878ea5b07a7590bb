package services

import (
	"context"
	"errors"
	"time"

	"vegmart/apperrors"
	"vegmart/repositories"
	"vegmart/utils"
)

// Distinguishable verification failures
var (
	ErrOTPNotFound = apperrors.NotFound("OTP not found, please request a new one")
	ErrOTPMismatch = apperrors.Validation("Invalid OTP")
	ErrOTPExpired  = apperrors.Validation("OTP has expired, please request a new one")
)

// OTPService issues and consumes one-time codes. Each email has at most one
// live code; issuing again supersedes it.
type OTPService struct {
	store  OTPStore
	mailer OTPMailer
	ttl    time.Duration
	now    func() time.Time
}

func NewOTPService(store OTPStore, mailer OTPMailer, ttl time.Duration) *OTPService {
	return &OTPService{store: store, mailer: mailer, ttl: ttl, now: time.Now}
}

// Issue stores a fresh code for email and mails it
func (s *OTPService) Issue(ctx context.Context, email string, reset bool) error {
	code, err := utils.GenerateOTP()
	if err != nil {
		return apperrors.Internal("Failed to generate OTP", err)
	}
	if err := s.store.Upsert(ctx, email, code, s.now().UTC().Add(s.ttl)); err != nil {
		return apperrors.Internal("Failed to store OTP", err)
	}
	if err := s.mailer.SendOTP(ctx, email, code, s.ttl, reset); err != nil {
		return apperrors.Upstream("Failed to send OTP email", err)
	}
	return nil
}

// Verify consumes the code for email. It succeeds only on an exact match
// strictly before expiry.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	otp, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrOTPNotFound
	}
	if err != nil {
		return apperrors.Internal("Failed to load OTP", err)
	}
	if !s.now().Before(otp.ExpiresAt) {
		return ErrOTPExpired
	}
	if !utils.CodesEqual(otp.Code, code) {
		return ErrOTPMismatch
	}
	if err := s.store.DeleteByEmail(ctx, email); err != nil {
		return apperrors.Internal("Failed to consume OTP", err)
	}
	return nil
}
