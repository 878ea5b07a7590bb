package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"vegmart/models"
)

// RetailerRepository persists retailer shop profiles
type RetailerRepository struct {
	Collection *mongo.Collection
}

func NewRetailerRepository(db *mongo.Database) *RetailerRepository {
	return &RetailerRepository{Collection: db.Collection(RetailersCollection)}
}

func (r *RetailerRepository) Create(ctx context.Context, ret *models.Retailer) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	now := time.Now().UTC()
	if ret.ID.IsZero() {
		ret.ID = primitive.NewObjectID()
	}
	ret.CreatedAt, ret.UpdatedAt = now, now
	_, err := r.Collection.InsertOne(ctx, ret)
	return mapErr(err)
}

func (r *RetailerRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Retailer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var ret models.Retailer
	if err := r.Collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&ret); err != nil {
		return nil, mapErr(err)
	}
	return &ret, nil
}

func (r *RetailerRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	return setStatus(ctx, r.Collection, id, status)
}

// DeliveryBoyRepository persists courier profiles
type DeliveryBoyRepository struct {
	Collection *mongo.Collection
}

func NewDeliveryBoyRepository(db *mongo.Database) *DeliveryBoyRepository {
	return &DeliveryBoyRepository{Collection: db.Collection(DeliveryBoysCollection)}
}

func (r *DeliveryBoyRepository) Create(ctx context.Context, d *models.DeliveryBoy) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	now := time.Now().UTC()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	d.CreatedAt, d.UpdatedAt = now, now
	_, err := r.Collection.InsertOne(ctx, d)
	return mapErr(err)
}

func (r *DeliveryBoyRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.DeliveryBoy, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var d models.DeliveryBoy
	if err := r.Collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (r *DeliveryBoyRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	return setStatus(ctx, r.Collection, id, status)
}

func setStatus(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RetailerRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.Collection, id)
}

func (r *DeliveryBoyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.Collection, id)
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
