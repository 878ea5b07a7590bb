package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vegmart/models"
	"vegmart/payments"
)

// UserStore is implemented by repositories.UserRepository
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetVerified(ctx context.Context, id primitive.ObjectID) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	RefreshPending(ctx context.Context, id primitive.ObjectID, name, hash string) error
	LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID string, dropPassword bool) error
	PromoteCustomer(ctx context.Context, id primitive.ObjectID, role string) error
	SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, patch models.ProfilePatch) (*models.User, error)
	List(ctx context.Context, role string, page, limit int) ([]models.User, error)
	AddAddress(ctx context.Context, userID primitive.ObjectID, addr models.Address) error
	UpdateAddress(ctx context.Context, userID primitive.ObjectID, addr models.Address) error
	DeleteAddress(ctx context.Context, userID, addressID primitive.ObjectID) error
}

// ProductStore is implemented by repositories.ProductRepository
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch, images []models.Image) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PaymentStore is implemented by repositories.PaymentRepository
type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	UpdateStatusByIntent(ctx context.Context, intentID, status string) (*models.Payment, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error)
}

// OTPStore is implemented by repositories.OTPRepository
type OTPStore interface {
	Upsert(ctx context.Context, email, code string, expiresAt time.Time) error
	FindByEmail(ctx context.Context, email string) (*models.OTP, error)
	DeleteByEmail(ctx context.Context, email string) error
}

// RetailerStore is implemented by repositories.RetailerRepository
type RetailerStore interface {
	Create(ctx context.Context, r *models.Retailer) error
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Retailer, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// DeliveryBoyStore is implemented by repositories.DeliveryBoyRepository
type DeliveryBoyStore interface {
	Create(ctx context.Context, d *models.DeliveryBoy) error
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.DeliveryBoy, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PaymentGateway is implemented by payments.StripeGateway
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (payments.Intent, error)
	ParseWebhook(payload []byte, signature string) (payments.Event, error)
}

// OTPMailer is implemented by utils.EmailService
type OTPMailer interface {
	SendOTP(ctx context.Context, toEmail, code string, ttl time.Duration, reset bool) error
}

// Caller identifies the authenticated user behind a request
type Caller struct {
	UserID primitive.ObjectID
	Role   string
}

func (c Caller) IsAdmin() bool { return c.Role == models.RoleAdmin }
