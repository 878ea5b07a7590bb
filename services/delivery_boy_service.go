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

const deliveryBoyDocFolder = "documents/delivery-boys"

// DeliveryBoyInput is the courier registration form
type DeliveryBoyInput struct {
	VehicleType   string
	VehicleNumber string
}

// DeliveryBoyRegistration is returned after a successful sign up
type DeliveryBoyRegistration struct {
	Token       string              `json:"token"`
	DeliveryBoy *models.DeliveryBoy `json:"deliveryBoy"`
}

type DeliveryBoyService struct {
	promotion
	couriers DeliveryBoyStore
	docs     storage.Uploader
}

func NewDeliveryBoyService(users UserStore, couriers DeliveryBoyStore, docs storage.Uploader, tokens *utils.TokenManager) *DeliveryBoyService {
	return &DeliveryBoyService{promotion: promotion{users: users, tokens: tokens}, couriers: couriers, docs: docs}
}

// Register uploads the driving licence and id proof together, stores a
// pending courier profile and switches the caller to the delivery-boy role.
func (s *DeliveryBoyService) Register(ctx context.Context, caller Caller, in DeliveryBoyInput, license, idProof *storage.File) (*DeliveryBoyRegistration, error) {
	in.VehicleType, in.VehicleNumber = strings.TrimSpace(in.VehicleType), strings.TrimSpace(in.VehicleNumber)
	if in.VehicleType == "" || in.VehicleNumber == "" {
		return nil, apperrors.Validation("Vehicle type and number are required")
	}
	if license == nil || idProof == nil {
		return nil, apperrors.Validation("Driving license and ID proof are required")
	}
	user, err := s.eligible(ctx, caller)
	if err != nil {
		return nil, err
	}

	comp := newCompensations(ctx)
	defer comp.run()

	docs, err := storage.UploadAll(ctx, s.docs, []storage.File{*license, *idProof}, deliveryBoyDocFolder)
	if err != nil {
		return nil, apperrors.Upstream("Failed to upload documents", err)
	}
	comp.add(func(ctx context.Context) {
		removeObjects(ctx, s.docs, "delivery_boy.register.rollback", storageIDs(docs))
	})

	d := &models.DeliveryBoy{
		UserID:         user.ID,
		VehicleType:    in.VehicleType,
		VehicleNumber:  strings.ToUpper(in.VehicleNumber),
		DrivingLicense: docs[0],
		IDProof:        docs[1],
		Status:         models.OnboardingPending,
	}
	if err := s.couriers.Create(ctx, d); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict("Delivery profile already exists")
		}
		return nil, apperrors.Internal("Error creating delivery profile", err)
	}
	comp.add(func(ctx context.Context) {
		if err := s.couriers.Delete(ctx, d.ID); err != nil {
			applog.Error(ctx, "delivery_boy.register.rollback", err, map[string]any{"delivery_boy_id": d.ID.Hex()})
		}
	})

	token, err := s.promote(ctx, user, models.RoleDeliveryBoy)
	if err != nil {
		return nil, err
	}
	comp.commit()
	applog.Audit(ctx, "delivery_boy.register", map[string]any{"delivery_boy_id": d.ID.Hex()})
	return &DeliveryBoyRegistration{Token: token, DeliveryBoy: d}, nil
}

func (s *DeliveryBoyService) Mine(ctx context.Context, caller Caller) (*models.DeliveryBoy, error) {
	d, err := s.couriers.FindByUserID(ctx, caller.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("Delivery profile not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Error fetching delivery profile", err)
	}
	return d, nil
}

func (s *DeliveryBoyService) SetStatus(ctx context.Context, id, status string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	if err := statusUpdate(status, func() error { return s.couriers.SetStatus(ctx, oid, status) }); err != nil {
		return err
	}
	applog.Audit(ctx, "admin.delivery_boy.status", map[string]any{"delivery_boy_id": id, "status": status})
	return nil
}
