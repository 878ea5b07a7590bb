package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vegmart/apperrors"
	"vegmart/models"
	"vegmart/storage"
	"vegmart/utils"
)

func TestRegisterRetailer(t *testing.T) {
	u := &models.User{Email: "shop@b.com", Role: models.RoleCustomer}
	users := newFakeUsers(u)
	retailers := newFakeRetailers()
	docs := &fakeStore{}
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	svc := NewRetailerService(users, retailers, docs, tokens)
	caller := Caller{UserID: u.ID, Role: models.RoleCustomer}
	ctx := context.Background()

	res, err := svc.Register(ctx, caller, RetailerInput{ShopName: "Green Cart", ShopAddress: "MG Road"}, &storage.File{Name: "gst.pdf"})
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingPending, res.Retailer.Status)
	assert.Equal(t, "documents/retailers/gst.pdf", res.Retailer.Document.StorageID)

	claims, err := tokens.ParseAccess(res.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleRetailer, claims.Role)
	stored, _ := users.FindByID(ctx, u.ID)
	assert.Equal(t, models.RoleRetailer, stored.Role)

	_, err = svc.Register(ctx, caller, RetailerInput{ShopName: "Again", ShopAddress: "x"}, &storage.File{Name: "b.pdf"})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	require.NoError(t, svc.SetStatus(ctx, res.Retailer.ID.Hex(), models.OnboardingApproved))
	assert.Equal(t, models.OnboardingApproved, retailers.rows[res.Retailer.ID].Status)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(svc.SetStatus(ctx, res.Retailer.ID.Hex(), "maybe")))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(svc.SetStatus(ctx, "nope", models.OnboardingApproved)))
}

func TestRegisterRetailer_PersistFailureRemovesDocument(t *testing.T) {
	u := &models.User{Email: "shop@b.com", Role: models.RoleCustomer}
	users := newFakeUsers(u)
	retailers := newFakeRetailers()
	retailers.failCreate = errBoom
	docs := &fakeStore{}
	svc := NewRetailerService(users, retailers, docs, utils.NewTokenManager("s", time.Hour))

	_, err := svc.Register(context.Background(), Caller{UserID: u.ID}, RetailerInput{ShopName: "A", ShopAddress: "B"}, &storage.File{Name: "doc.pdf"})
	require.Error(t, err)
	assert.Equal(t, []string{"documents/retailers/doc.pdf"}, docs.deleted)
	stored, _ := users.FindByID(context.Background(), u.ID)
	assert.Equal(t, models.RoleCustomer, stored.Role)
}

func TestRegisterDeliveryBoy(t *testing.T) {
	u := &models.User{Email: "ride@b.com", Role: models.RoleCustomer}
	users := newFakeUsers(u)
	docs := &fakeStore{}
	svc := NewDeliveryBoyService(users, newFakeCouriers(), docs, utils.NewTokenManager("s", time.Hour))
	caller := Caller{UserID: u.ID}

	res, err := svc.Register(context.Background(), caller, DeliveryBoyInput{VehicleType: "bike", VehicleNumber: "mh12ab1234"},
		&storage.File{Name: "dl.jpg"}, &storage.File{Name: "aadhaar.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "MH12AB1234", res.DeliveryBoy.VehicleNumber)
	assert.Equal(t, "documents/delivery-boys/dl.jpg", res.DeliveryBoy.DrivingLicense.StorageID)
	assert.Equal(t, "documents/delivery-boys/aadhaar.jpg", res.DeliveryBoy.IDProof.StorageID)

	mine, err := svc.Mine(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, res.DeliveryBoy.ID, mine.ID)
}

func TestRegisterDeliveryBoy_UploadFailureLeavesNothing(t *testing.T) {
	u := &models.User{Email: "ride@b.com", Role: models.RoleCustomer}
	couriers := newFakeCouriers()
	docs := &fakeStore{failUpload: map[string]bool{"id.jpg": true}}
	svc := NewDeliveryBoyService(newFakeUsers(u), couriers, docs, utils.NewTokenManager("s", time.Hour))

	_, err := svc.Register(context.Background(), Caller{UserID: u.ID}, DeliveryBoyInput{VehicleType: "bike", VehicleNumber: "x1"},
		&storage.File{Name: "dl.jpg"}, &storage.File{Name: "id.jpg"})
	assert.Equal(t, apperrors.KindUpstream, apperrors.KindOf(err))
	assert.Empty(t, couriers.rows)
	assert.ElementsMatch(t, docs.uploaded, docs.deleted)
}

func TestRegisterDeliveryBoy_RequiresCustomer(t *testing.T) {
	u := &models.User{Email: "shop@b.com", Role: models.RoleRetailer}
	svc := NewDeliveryBoyService(newFakeUsers(u), newFakeCouriers(), &fakeStore{}, utils.NewTokenManager("s", time.Hour))

	_, err := svc.Register(context.Background(), Caller{UserID: u.ID}, DeliveryBoyInput{VehicleType: "bike", VehicleNumber: "x1"},
		&storage.File{Name: "dl.jpg"}, &storage.File{Name: "id.jpg"})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

// staleUsers serves a snapshot from FindByID, as a request that read the user
// before a concurrent sign up committed would see it.
type staleUsers struct {
	*fakeUsers
	snapshot models.User
}

func (s staleUsers) FindByID(_ context.Context, _ primitive.ObjectID) (*models.User, error) {
	cp := s.snapshot
	return &cp, nil
}

func TestRegisterDeliveryBoy_LosesRaceWithRetailerSignUp(t *testing.T) {
	u := &models.User{Email: "both@b.com", Role: models.RoleCustomer}
	users := newFakeUsers(u)
	snapshot := *users.byID[u.ID]
	tokens := utils.NewTokenManager("s", time.Hour)
	ctx := context.Background()
	caller := Caller{UserID: u.ID, Role: models.RoleCustomer}

	_, err := NewRetailerService(users, newFakeRetailers(), &fakeStore{}, tokens).
		Register(ctx, caller, RetailerInput{ShopName: "A", ShopAddress: "B"}, &storage.File{Name: "doc.pdf"})
	require.NoError(t, err)

	couriers := newFakeCouriers()
	docs := &fakeStore{}
	svc := NewDeliveryBoyService(staleUsers{fakeUsers: users, snapshot: snapshot}, couriers, docs, tokens)
	_, err = svc.Register(ctx, caller, DeliveryBoyInput{VehicleType: "bike", VehicleNumber: "KA01"},
		&storage.File{Name: "dl.jpg"}, &storage.File{Name: "id.jpg"})

	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, models.RoleRetailer, users.byID[u.ID].Role)
	assert.Empty(t, couriers.rows)
	assert.ElementsMatch(t, docs.uploaded, docs.deleted)
}
