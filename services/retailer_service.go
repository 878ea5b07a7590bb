package services

import (
	"context"
	"errors"
	"strings"

	"vegmart/apperrors"
	"vegmart/applog"
	"vegmart/models"
	"vegmart/repositories"
	"vegmart/storage"
	"vegmart/utils"
)

const retailerDocFolder = "documents/retailers"

// RetailerInput is the shop registration form
type RetailerInput struct {
	ShopName      string
	ShopAddress   string
	LicenseNumber string
}

// RetailerRegistration is returned after a successful sign up
type RetailerRegistration struct {
	Token    string           `json:"token"`
	Retailer *models.Retailer `json:"retailer"`
}

// RetailerService turns customers into retailers
type RetailerService struct {
	promotion
	retailers RetailerStore
	docs      storage.Uploader
}

func NewRetailerService(users UserStore, retailers RetailerStore, docs storage.Uploader, tokens *utils.TokenManager) *RetailerService {
	return &RetailerService{promotion: promotion{users: users, tokens: tokens}, retailers: retailers, docs: docs}
}

// Register uploads the shop document, stores a pending shop profile and
// switches the caller to the retailer role.
func (s *RetailerService) Register(ctx context.Context, caller Caller, in RetailerInput, document *storage.File) (*RetailerRegistration, error) {
	in.ShopName, in.ShopAddress = strings.TrimSpace(in.ShopName), strings.TrimSpace(in.ShopAddress)
	if in.ShopName == "" || in.ShopAddress == "" {
		return nil, apperrors.Validation("Shop name and address are required")
	}
	if document == nil {
		return nil, apperrors.Validation("A shop document is required")
	}
	user, err := s.eligible(ctx, caller)
	if err != nil {
		return nil, err
	}

	comp := newCompensations(ctx)
	defer comp.run()

	doc, err := s.docs.Upload(ctx, *document, retailerDocFolder)
	if err != nil {
		return nil, apperrors.Upstream("Failed to upload document", err)
	}
	comp.add(func(ctx context.Context) {
		removeObjects(ctx, s.docs, "retailer.register.rollback", []string{doc.StorageID})
	})

	r := &models.Retailer{
		UserID:        user.ID,
		ShopName:      in.ShopName,
		ShopAddress:   in.ShopAddress,
		LicenseNumber: strings.TrimSpace(in.LicenseNumber),
		Document:      doc,
		Status:        models.OnboardingPending,
	}
	if err := s.retailers.Create(ctx, r); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict("Retailer profile already exists")
		}
		return nil, apperrors.Internal("Error creating retailer", err)
	}
	comp.add(func(ctx context.Context) {
		if err := s.retailers.Delete(ctx, r.ID); err != nil {
			applog.Error(ctx, "retailer.register.rollback", err, map[string]any{"retailer_id": r.ID.Hex()})
		}
	})

	token, err := s.promote(ctx, user, models.RoleRetailer)
	if err != nil {
		return nil, err
	}
	comp.commit()
	applog.Audit(ctx, "retailer.register", map[string]any{"retailer_id": r.ID.Hex()})
	return &RetailerRegistration{Token: token, Retailer: r}, nil
}

// Mine returns the caller's shop profile
func (s *RetailerService) Mine(ctx context.Context, caller Caller) (*models.Retailer, error) {
	r, err := s.retailers.FindByUserID(ctx, caller.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("Retailer profile not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Error fetching retailer", err)
	}
	return r, nil
}

// SetStatus is the admin approval step
func (s *RetailerService) SetStatus(ctx context.Context, id, status string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	if err := statusUpdate(status, func() error { return s.retailers.SetStatus(ctx, oid, status) }); err != nil {
		return err
	}
	applog.Audit(ctx, "admin.retailer.status", map[string]any{"retailer_id": id, "status": status})
	return nil
}
