package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vegmart/models"
	"vegmart/services"
)

// UserService is implemented by services.UserService
type UserService interface {
	Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, in services.ProfileInput) (*models.User, error)
	ListAddresses(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error)
	AddAddress(ctx context.Context, userID primitive.ObjectID, in services.AddressInput) (*models.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID primitive.ObjectID, in services.AddressInput) (*models.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID primitive.ObjectID) error
	ListUsers(ctx context.Context, role string, page, limit int) ([]models.User, error)
	SetBlocked(ctx context.Context, caller services.Caller, id primitive.ObjectID, blocked bool) error
}

// UserController handles profile and address requests
type UserController struct {
	Users          UserService
	MaxUploadBytes int64
}

func NewUserController(users UserService, maxUploadBytes int64) *UserController {
	return &UserController{Users: users, MaxUploadBytes: maxUploadBytes}
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := uc.Users.Profile(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", user)
}

// UpdateProfile accepts JSON or a multipart form with an optional
// profileImage file.
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in services.ProfileInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Name  *string `json:"name"`
			Phone *string `json:"phone"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		in.Name, in.Phone = body.Name, body.Phone
	} else {
		form := &multipartForm{maxFileBytes: uc.MaxUploadBytes}
		defer form.close()
		if err := form.parse(w, r, 1); err != nil {
			writeError(w, r, err)
			return
		}
		in.Name, in.Phone = formString(r, "name"), formString(r, "phone")
		img, err := form.file(r, "profileImage", imageTypes)
		if err != nil && !errors.Is(err, errNoFile) {
			writeError(w, r, err)
			return
		}
		in.Image = img
	}

	user, err := uc.Users.UpdateProfile(r.Context(), caller.UserID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Profile updated", user)
}

func (uc *UserController) GetAddresses(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := uc.Users.ListAddresses(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", list)
}

func (uc *UserController) AddAddress(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.AddressInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	addr, err := uc.Users.AddAddress(r.Context(), caller.UserID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Address added", addr)
}

func (uc *UserController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	addressID, err := pathID(r, "addressId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.AddressInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	addr, err := uc.Users.UpdateAddress(r.Context(), caller.UserID, addressID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Address updated", addr)
}

func (uc *UserController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	addressID, err := pathID(r, "addressId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := uc.Users.DeleteAddress(r.Context(), caller.UserID, addressID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Address deleted", nil)
}
