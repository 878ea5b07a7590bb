package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OnboardingPending  = "pending"
	OnboardingApproved = "approved"
	OnboardingRejected = "rejected"
)

func ValidOnboardingStatus(s string) bool {
	switch s {
	case OnboardingPending, OnboardingApproved, OnboardingRejected:
		return true
	}
	return false
}

// Retailer is the shop profile attached to a retailer account
type Retailer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID `bson:"user_id" json:"userId"`
	ShopName      string             `bson:"shop_name" json:"shopName"`
	ShopAddress   string             `bson:"shop_address" json:"shopAddress"`
	LicenseNumber string             `bson:"license_number,omitempty" json:"licenseNumber,omitempty"`
	Document      Image              `bson:"document" json:"document"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}

// DeliveryBoy is the courier profile attached to a delivery-boy account
type DeliveryBoy struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID         primitive.ObjectID `bson:"user_id" json:"userId"`
	VehicleType    string             `bson:"vehicle_type" json:"vehicleType"`
	VehicleNumber  string             `bson:"vehicle_number" json:"vehicleNumber"`
	DrivingLicense Image              `bson:"driving_license" json:"drivingLicense"`
	IDProof        Image              `bson:"id_proof" json:"idProof"`
	Status         string             `bson:"status" json:"status"`
	IsAvailable    bool               `bson:"is_available" json:"isAvailable"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}
