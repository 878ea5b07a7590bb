package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vegmart/apperrors"
	"vegmart/applog"
	"vegmart/models"
	"vegmart/repositories"
	"vegmart/storage"
)

const profileImageFolder = "profiles"

// AddressInput is the client supplied part of an address
type AddressInput struct {
	Label     string `json:"label"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipcode"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"isDefault"`
}

func (in AddressInput) toAddress(id primitive.ObjectID) (models.Address, error) {
	a := models.Address{
		ID:        id,
		Label:     strings.TrimSpace(in.Label),
		Street:    strings.TrimSpace(in.Street),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		ZipCode:   strings.TrimSpace(in.ZipCode),
		Phone:     strings.TrimSpace(in.Phone),
		IsDefault: in.IsDefault,
	}
	if a.Street == "" || a.City == "" || a.ZipCode == "" {
		return models.Address{}, apperrors.Validation("Street, city and zipcode are required")
	}
	return a, nil
}

// ProfileInput holds the optional parts of a profile update
type ProfileInput struct {
	Name  *string
	Phone *string
	Image *storage.File
}

// UserService manages profiles, addresses and admin user moderation
type UserService struct {
	users  UserStore
	images storage.Uploader
}

func NewUserService(users UserStore, images storage.Uploader) *UserService {
	return &UserService{users: users, images: images}
}

func (s *UserService) Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load user", err)
	}
	return user, nil
}

// UpdateProfile changes name/phone and optionally replaces the profile
// picture. The old picture is deleted best effort after the write.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (*models.User, error) {
	current, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	patch := models.ProfilePatch{Phone: in.Phone}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.Validation("Name cannot be empty")
		}
		patch.Name = &name
	}

	comp := newCompensations(ctx)
	defer comp.run()

	if in.Image != nil {
		img, err := s.images.Upload(ctx, *in.Image, profileImageFolder)
		if err != nil {
			return nil, apperrors.Upstream("Failed to upload profile image", err)
		}
		comp.add(func(ctx context.Context) {
			removeObjects(ctx, s.images, "user.profile.rollback", []string{img.StorageID})
		})
		patch.ProfileImage = &img
	}

	updated, err := s.users.UpdateProfile(ctx, id, patch)
	if err != nil {
		return nil, apperrors.Internal("Error updating profile", err)
	}
	comp.commit()

	// pictures copied from Google have no storage id
	if patch.ProfileImage != nil && current.ProfileImage != nil && current.ProfileImage.StorageID != "" {
		removeObjects(ctx, s.images, "user.profile.cleanup", []string{current.ProfileImage.StorageID})
	}
	return updated, nil
}

func (s *UserService) ListAddresses(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Addresses == nil {
		return []models.Address{}, nil
	}
	return user.Addresses, nil
}

func (s *UserService) AddAddress(ctx context.Context, userID primitive.ObjectID, in AddressInput) (*models.Address, error) {
	addr, err := in.toAddress(primitive.NewObjectID())
	if err != nil {
		return nil, err
	}
	if err := s.users.AddAddress(ctx, userID, addr); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal("Error adding address", err)
	}
	return &addr, nil
}

func (s *UserService) UpdateAddress(ctx context.Context, userID, addressID primitive.ObjectID, in AddressInput) (*models.Address, error) {
	addr, err := in.toAddress(addressID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateAddress(ctx, userID, addr); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Address not found")
		}
		return nil, apperrors.Internal("Error updating address", err)
	}
	return &addr, nil
}

func (s *UserService) DeleteAddress(ctx context.Context, userID, addressID primitive.ObjectID) error {
	if err := s.users.DeleteAddress(ctx, userID, addressID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("Address not found")
		}
		return apperrors.Internal("Error deleting address", err)
	}
	return nil
}

// ListUsers is the admin listing, optionally filtered by role
func (s *UserService) ListUsers(ctx context.Context, role string, page, limit int) ([]models.User, error) {
	if role != "" && !models.ValidRole(role) {
		return nil, apperrors.Validation("Unknown role")
	}
	users, err := s.users.List(ctx, role, page, limit)
	if err != nil {
		return nil, apperrors.Internal("Error fetching users", err)
	}
	return users, nil
}

// SetBlocked blocks or unblocks a non-admin account
func (s *UserService) SetBlocked(ctx context.Context, caller Caller, id primitive.ObjectID, blocked bool) error {
	if caller.UserID == id {
		return apperrors.Validation("You cannot block yourself")
	}
	target, err := s.Profile(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == models.RoleAdmin {
		return apperrors.Forbidden("Admins cannot be blocked")
	}
	if err := s.users.SetBlocked(ctx, id, blocked); err != nil {
		return apperrors.Internal("Error updating user", err)
	}
	applog.Audit(ctx, "admin.user.block", map[string]any{"target": id.Hex(), "blocked": blocked})
	return nil
}
