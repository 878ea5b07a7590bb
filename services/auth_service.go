package services

import (
	"context"
	"errors"
	"strings"

	"vegmart/apperrors"
	"vegmart/applog"
	"vegmart/models"
	"vegmart/oauth"
	"vegmart/repositories"
	"vegmart/utils"
)

// AuthResult is returned by every successful login path
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService covers password login, registration with OTP verification,
// password reset and Google sign-in.
type AuthService struct {
	users  UserStore
	otps   *OTPService
	tokens *utils.TokenManager
}

func NewAuthService(users UserStore, otps *OTPService, tokens *utils.TokenManager) *AuthService {
	return &AuthService{users: users, otps: otps, tokens: tokens}
}

func normalizeEmail(email string) (string, error) {
	e, ok := utils.NormalizeEmail(email)
	if !ok {
		return "", apperrors.Validation("A valid email is required")
	}
	return e, nil
}

func (s *AuthService) lookup(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load user", err)
	}
	return user, nil
}

func (s *AuthService) issueToken(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Internal("Error generating token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Register creates an unverified customer, or refreshes a pending one, and
// mails a verification code.
func (s *AuthService) Register(ctx context.Context, name, email, password string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.Validation("Name is required")
	}
	if !utils.ValidPassword(password) {
		return apperrors.Validation("Password must be 8-64 characters with letters and digits")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return apperrors.Internal("Error hashing password", err)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		return apperrors.Conflict("User already exists")
	case err == nil:
		if err := s.users.RefreshPending(ctx, existing.ID, name, hash); err != nil {
			return apperrors.Internal("Error updating user", err)
		}
	case errors.Is(err, repositories.ErrNotFound):
		user := &models.User{Name: name, Email: email, Password: hash, Role: models.RoleCustomer}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperrors.Conflict("User already exists")
			}
			return apperrors.Internal("Error creating user", err)
		}
		applog.Audit(ctx, "auth.register", map[string]any{"email": email})
	default:
		return apperrors.Internal("Failed to load user", err)
	}
	return s.otps.Issue(ctx, email, false)
}

// SendOTP re-issues the verification code of an unverified account
func (s *AuthService) SendOTP(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return apperrors.Conflict("User is already verified")
	}
	return s.otps.Issue(ctx, email, false)
}

// VerifyOTP consumes the verification code, marks the account verified and
// logs the user in.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if !utils.ValidOTP(code) {
		return nil, apperrors.Validation("OTP must be 6 digits")
	}
	user, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.otps.Verify(ctx, email, code); err != nil {
		return nil, err
	}
	if !user.IsVerified {
		if err := s.users.SetVerified(ctx, user.ID); err != nil {
			return nil, apperrors.Internal("Error updating user verification status", err)
		}
		user.IsVerified = true
	}
	applog.Audit(ctx, "auth.verify", map[string]any{"email": email})
	return s.issueToken(user)
}

// SendResetOTP mails a password reset code to an existing account
func (s *AuthService) SendResetOTP(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if _, err := s.lookup(ctx, email); err != nil {
		return err
	}
	return s.otps.Issue(ctx, email, true)
}

// VerifyResetOTP consumes the reset code and returns a short lived token
// that ResetPassword accepts.
func (s *AuthService) VerifyResetOTP(ctx context.Context, email, code string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	if !utils.ValidOTP(code) {
		return "", apperrors.Validation("OTP must be 6 digits")
	}
	if _, err := s.lookup(ctx, email); err != nil {
		return "", err
	}
	if err := s.otps.Verify(ctx, email, code); err != nil {
		return "", err
	}
	token, err := s.tokens.GenerateResetToken(email)
	if err != nil {
		return "", apperrors.Internal("Error generating token", err)
	}
	return token, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, resetToken, password string) error {
	claims, err := s.tokens.ParseReset(resetToken)
	if err != nil {
		return apperrors.Unauthorized("Invalid or expired reset token")
	}
	if !utils.ValidPassword(password) {
		return apperrors.Validation("Password must be 8-64 characters with letters and digits")
	}
	user, err := s.lookup(ctx, claims.Email)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return apperrors.Internal("Error hashing password", err)
	}
	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		return apperrors.Internal("Error updating password", err)
	}
	applog.Audit(ctx, "auth.password.reset", map[string]any{"email": claims.Email})
	return nil
}

// Login checks email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, apperrors.Validation("Password is required")
	}
	user, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsBlocked {
		return nil, apperrors.Forbidden("User is blocked")
	}
	if !user.IsVerified {
		return nil, apperrors.Unauthorized("Email not verified")
	}
	if user.Password == "" {
		return nil, apperrors.Unauthorized("This account uses Google sign-in")
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, apperrors.Unauthorized("Invalid password")
	}
	return s.issueToken(user)
}

// GoogleLogin logs in the account with the profile's email, creating a
// verified, password-less customer when there is none. Google must have
// verified the email. Linking a never verified account clears its password.
func (s *AuthService) GoogleLogin(ctx context.Context, profile oauth.GoogleProfile) (*AuthResult, error) {
	if !profile.VerifiedEmail {
		applog.Security(ctx, "auth.google.unverified_email", map[string]any{"email": profile.Email})
		return nil, apperrors.Unauthorized("Google account email is not verified")
	}
	email, err := normalizeEmail(profile.Email)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.IsBlocked {
			return nil, apperrors.Forbidden("User is blocked")
		}
		if user.GoogleID == "" || !user.IsVerified {
			// a password set on a never verified account was not proven by
			// the mailbox owner
			dropPassword := !user.IsVerified
			if err := s.users.LinkGoogle(ctx, user.ID, profile.ID, dropPassword); err != nil {
				return nil, apperrors.Internal("Error linking Google account", err)
			}
			if dropPassword {
				user.Password = ""
				applog.Security(ctx, "auth.google.pending_password_dropped", map[string]any{"email": email})
			}
			user.GoogleID = profile.ID
			user.IsVerified = true
		}
	case errors.Is(err, repositories.ErrNotFound):
		name := strings.TrimSpace(profile.Name)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		user = &models.User{
			Name:       name,
			Email:      email,
			Role:       models.RoleCustomer,
			IsVerified: true,
			GoogleID:   profile.ID,
		}
		if profile.Picture != "" {
			user.ProfileImage = &models.Image{URL: profile.Picture}
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, apperrors.Internal("Error creating user", err)
		}
		applog.Audit(ctx, "auth.google.register", map[string]any{"email": email})
	default:
		return nil, apperrors.Internal("Failed to load user", err)
	}
	return s.issueToken(user)
}
