package controllers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"vegmart/apperrors"
	"vegmart/applog"
	"vegmart/oauth"
	"vegmart/services"
)

const oauthStateCookie = "oauth_state"

// AuthService is implemented by services.AuthService
type AuthService interface {
	Register(ctx context.Context, name, email, password string) error
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*services.AuthResult, error)
	SendResetOTP(ctx context.Context, email string) error
	VerifyResetOTP(ctx context.Context, email, code string) (string, error)
	ResetPassword(ctx context.Context, resetToken, password string) error
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	GoogleLogin(ctx context.Context, profile oauth.GoogleProfile) (*services.AuthResult, error)
}

// GoogleProvider is implemented by oauth.Google
type GoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (oauth.GoogleProfile, error)
}

// AuthController handles registration, login, OTP and Google sign-in
type AuthController struct {
	Auth      AuthService
	Google    GoogleProvider
	ClientURL string
}

func NewAuthController(auth AuthService, google GoogleProvider, clientURL string) *AuthController {
	return &AuthController{Auth: auth, Google: google, ClientURL: clientURL}
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resetRequest struct {
	ResetToken string `json:"resetToken"`
	Password   string `json:"password"`
}

// Register handles user registration
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := ac.Auth.Register(r.Context(), in.Name, in.Email, in.Password); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "User registered successfully. Please check your email for the OTP.", nil)
}

// Login handles user login
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := ac.Auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		applog.Security(r.Context(), "auth.login.fail", map[string]any{"kind": apperrors.KindOf(err).String()})
		writeError(w, r, err)
		return
	}
	applog.Audit(r.Context(), "auth.login", map[string]any{"user_id": res.User.ID.Hex()})
	writeJSON(w, http.StatusOK, "Login successful", res)
}

func (ac *AuthController) SendOTP(w http.ResponseWriter, r *http.Request) {
	var in otpRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := ac.Auth.SendOTP(r.Context(), in.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "OTP sent", nil)
}

func (ac *AuthController) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var in otpRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := ac.Auth.VerifyOTP(r.Context(), in.Email, in.OTP)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Email verified", res)
}

func (ac *AuthController) SendResetOTP(w http.ResponseWriter, r *http.Request) {
	var in otpRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := ac.Auth.SendResetOTP(r.Context(), in.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "OTP sent", nil)
}

func (ac *AuthController) VerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var in otpRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	token, err := ac.Auth.VerifyResetOTP(r.Context(), in.Email, in.OTP)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "OTP verified", map[string]string{"resetToken": token})
}

func (ac *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in resetRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := ac.Auth.ResetPassword(r.Context(), in.ResetToken, in.Password); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Password updated", nil)
}

// GoogleRedirect sends the browser to Google's consent screen
func (ac *AuthController) GoogleRedirect(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, ac.Google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback finishes the code exchange. With a client URL configured
// the browser is sent back there with the token, otherwise JSON is returned.
func (ac *AuthController) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || q.Get("state") == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(q.Get("state"))) != 1 {
		applog.Security(r.Context(), "auth.google.state_mismatch", nil)
		writeError(w, r, apperrors.Unauthorized("Invalid OAuth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/api/auth/google", MaxAge: -1})

	code := q.Get("code")
	if code == "" {
		writeError(w, r, apperrors.Validation("Missing authorization code"))
		return
	}
	profile, err := ac.Google.Exchange(r.Context(), code)
	if err != nil {
		writeError(w, r, apperrors.Upstream("Google sign-in failed", err))
		return
	}
	res, err := ac.Auth.GoogleLogin(r.Context(), profile)
	if err != nil {
		writeError(w, r, err)
		return
	}
	applog.Audit(r.Context(), "auth.google.login", map[string]any{"user_id": res.User.ID.Hex()})

	if ac.ClientURL == "" {
		writeJSON(w, http.StatusOK, "Login successful", res)
		return
	}
	target, err := url.Parse(ac.ClientURL)
	if err != nil {
		writeError(w, r, apperrors.Internal("Invalid client URL", err))
		return
	}
	params := target.Query()
	params.Set("token", res.Token)
	target.RawQuery = params.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}
