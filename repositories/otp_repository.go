package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vegmart/models"
)

// OTPRepository keeps at most one code per email
type OTPRepository struct {
	Collection *mongo.Collection
}

func NewOTPRepository(db *mongo.Database) *OTPRepository {
	return &OTPRepository{Collection: db.Collection(OTPsCollection)}
}

// Upsert replaces any code stored for email
func (r *OTPRepository) Upsert(ctx context.Context, email, code string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := r.Collection.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{
			"email":      email,
			"code":       code,
			"expires_at": expiresAt,
			"created_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return mapErr(err)
}

func (r *OTPRepository) FindByEmail(ctx context.Context, email string) (*models.OTP, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var otp models.OTP
	if err := r.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&otp); err != nil {
		return nil, mapErr(err)
	}
	return &otp, nil
}

func (r *OTPRepository) DeleteByEmail(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := r.Collection.DeleteOne(ctx, bson.M{"email": email})
	return err
}
