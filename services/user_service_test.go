package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vegmart/apperrors"
	"vegmart/models"
	"vegmart/storage"
)

func TestUpdateProfile_ReplacesPicture(t *testing.T) {
	u := &models.User{Name: "Asha", Email: "a@b.com", Role: models.RoleCustomer, ProfileImage: &models.Image{URL: "old", StorageID: "profiles/old.jpg"}}
	users := newFakeUsers(u)
	objects := &fakeStore{}
	svc := NewUserService(users, objects)

	name := "Asha K"
	updated, err := svc.UpdateProfile(context.Background(), u.ID, ProfileInput{Name: &name, Image: &storage.File{Name: "new.jpg"}})
	require.NoError(t, err)
	assert.Equal(t, "Asha K", updated.Name)
	assert.Equal(t, "profiles/new.jpg", updated.ProfileImage.StorageID)
	assert.Equal(t, []string{"profiles/old.jpg"}, objects.deleted)
}

func TestUpdateProfile_GooglePictureIsNotDeleted(t *testing.T) {
	u := &models.User{Email: "g@b.com", ProfileImage: &models.Image{URL: "https://lh3.test/p.jpg"}}
	objects := &fakeStore{}
	svc := NewUserService(newFakeUsers(u), objects)

	_, err := svc.UpdateProfile(context.Background(), u.ID, ProfileInput{Image: &storage.File{Name: "me.png"}})
	require.NoError(t, err)
	assert.Empty(t, objects.deleted)
}

func TestUpdateProfile_EmptyName(t *testing.T) {
	u := &models.User{Email: "a@b.com"}
	svc := NewUserService(newFakeUsers(u), &fakeStore{})
	blank := "  "
	_, err := svc.UpdateProfile(context.Background(), u.ID, ProfileInput{Name: &blank})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestAddresses(t *testing.T) {
	u := &models.User{Email: "a@b.com"}
	svc := NewUserService(newFakeUsers(u), &fakeStore{})
	ctx := context.Background()

	_, err := svc.AddAddress(ctx, u.ID, AddressInput{Street: "1 Main"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	addr, err := svc.AddAddress(ctx, u.ID, AddressInput{Street: "1 Main", City: "Pune", ZipCode: "411001"})
	require.NoError(t, err)

	list, err := svc.ListAddresses(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.UpdateAddress(ctx, u.ID, addr.ID, AddressInput{Street: "2 Main", City: "Pune", ZipCode: "411002"})
	require.NoError(t, err)
	list, _ = svc.ListAddresses(ctx, u.ID)
	assert.Equal(t, "2 Main", list[0].Street)

	require.NoError(t, svc.DeleteAddress(ctx, u.ID, addr.ID))
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(svc.DeleteAddress(ctx, u.ID, addr.ID)))
}

func TestSetBlocked(t *testing.T) {
	admin := &models.User{Email: "admin@b.com", Role: models.RoleAdmin}
	other := &models.User{Email: "c@b.com", Role: models.RoleCustomer}
	users := newFakeUsers(admin, other)
	svc := NewUserService(users, &fakeStore{})
	caller := Caller{UserID: admin.ID, Role: models.RoleAdmin}
	ctx := context.Background()

	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(svc.SetBlocked(ctx, caller, admin.ID, true)))
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(svc.SetBlocked(ctx, caller, primitive.NewObjectID(), true)))

	require.NoError(t, svc.SetBlocked(ctx, caller, other.ID, true))
	got, _ := users.FindByID(ctx, other.ID)
	assert.True(t, got.IsBlocked)
}

func TestListUsers_UnknownRole(t *testing.T) {
	svc := NewUserService(newFakeUsers(), &fakeStore{})
	_, err := svc.ListUsers(context.Background(), "wizard", 1, 20)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
