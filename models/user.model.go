package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCustomer    = "customer"
	RoleRetailer    = "retailer"
	RoleDeliveryBoy = "delivery-boy"
	RoleAdmin       = "admin"
)

// Image is a file held by an object store. StorageID is the Cloudinary public
// id or the S3 object key.
type Image struct {
	URL       string `bson:"url" json:"url"`
	StorageID string `bson:"storage_id" json:"storageId"`
}

// Address represents a user's delivery address
type Address struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Label     string             `bson:"label" json:"label"`
	Street    string             `bson:"street" json:"street"`
	City      string             `bson:"city" json:"city"`
	State     string             `bson:"state" json:"state"`
	ZipCode   string             `bson:"zipcode" json:"zipcode"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	IsDefault bool               `bson:"is_default" json:"isDefault"`
}

// User represents an account of any role
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password" json:"-"`
	Role         string             `bson:"role" json:"role"`
	IsBlocked    bool               `bson:"is_blocked" json:"isBlocked"`
	IsVerified   bool               `bson:"is_verified" json:"isVerified"`
	ProfileImage *Image             `bson:"profile_image,omitempty" json:"profileImage,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	GoogleID     string             `bson:"google_id,omitempty" json:"-"`
	Addresses    []Address          `bson:"addresses" json:"addresses"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	switch r {
	case RoleCustomer, RoleRetailer, RoleDeliveryBoy, RoleAdmin:
		return true
	}
	return false
}

// ProfilePatch carries the optional fields of a profile update
type ProfilePatch struct {
	Name         *string
	Phone        *string
	ProfileImage *Image
}
