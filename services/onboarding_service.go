package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vegmart/apperrors"
	"vegmart/models"
	"vegmart/repositories"
	"vegmart/utils"
)

// promotion holds what retailer and delivery-boy sign up share: the caller
// must be a plain customer, and on success the account switches role and
// gets a token carrying it.
type promotion struct {
	users  UserStore
	tokens *utils.TokenManager
}

func (p promotion) eligible(ctx context.Context, caller Caller) (*models.User, error) {
	user, err := p.users.FindByID(ctx, caller.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load user", err)
	}
	if user.Role != models.RoleCustomer {
		return nil, apperrors.Conflict("Only customer accounts can register for this role")
	}
	return user, nil
}

func (p promotion) promote(ctx context.Context, user *models.User, role string) (string, error) {
	// a concurrent sign up for the other role may have won since eligible
	if err := p.users.PromoteCustomer(ctx, user.ID, role); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperrors.Conflict("Only customer accounts can register for this role")
		}
		return "", apperrors.Internal("Error updating user role", err)
	}
	user.Role = role
	token, err := p.tokens.GenerateJWT(user.ID.Hex(), user.Email, role)
	if err != nil {
		return "", apperrors.Internal("Error generating token", err)
	}
	return token, nil
}

func statusUpdate(status string, set func() error) error {
	if !models.ValidOnboardingStatus(status) {
		return apperrors.Validation("Status must be pending, approved or rejected")
	}
	if err := set(); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("Profile not found")
		}
		return apperrors.Internal("Error updating status", err)
	}
	return nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("Invalid id")
	}
	return oid, nil
}
