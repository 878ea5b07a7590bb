package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vegmart/models"
)

// UserRepository persists users and their embedded addresses
type UserRepository struct {
	Collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{Collection: db.Collection(UsersCollection)}
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var user models.User
	if err := r.Collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// Create inserts the user and fills in its id and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	now := time.Now().UTC()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	_, err := r.Collection.InsertOne(ctx, user)
	return mapErr(err)
}

func (r *UserRepository) set(ctx context.Context, filter bson.M, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	fields["updated_at"] = time.Now().UTC()
	res, err := r.Collection.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetVerified(ctx context.Context, id primitive.ObjectID) error {
	return r.set(ctx, bson.M{"_id": id}, bson.M{"is_verified": true})
}

func (r *UserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.set(ctx, bson.M{"_id": id}, bson.M{"password": hash})
}

// RefreshPending overwrites name and password of a not yet verified account
func (r *UserRepository) RefreshPending(ctx context.Context, id primitive.ObjectID, name, hash string) error {
	return r.set(ctx, bson.M{"_id": id, "is_verified": false}, bson.M{"name": name, "password": hash})
}

// LinkGoogle attaches a Google id and marks the account verified. With
// dropPassword the stored hash is cleared in the same write.
func (r *UserRepository) LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID string, dropPassword bool) error {
	fields := bson.M{"google_id": googleID, "is_verified": true}
	if dropPassword {
		fields["password"] = ""
	}
	return r.set(ctx, bson.M{"_id": id}, fields)
}

// PromoteCustomer moves a customer account to role. ErrNotFound means the
// account no longer holds the customer role.
func (r *UserRepository) PromoteCustomer(ctx context.Context, id primitive.ObjectID, role string) error {
	return r.set(ctx, bson.M{"_id": id, "role": models.RoleCustomer}, bson.M{"role": role})
}

func (r *UserRepository) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) error {
	return r.set(ctx, bson.M{"_id": id}, bson.M{"is_blocked": blocked})
}

// UpdateProfile applies patch and returns the updated user
func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, patch models.ProfilePatch) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	fields := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Phone != nil {
		fields["phone"] = *patch.Phone
	}
	if patch.ProfileImage != nil {
		fields["profile_image"] = *patch.ProfileImage
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := r.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

// List returns users, newest first, optionally restricted to one role
func (r *UserRepository) List(ctx context.Context, role string, page, limit int) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	cursor, err := r.Collection.Find(ctx, filter, paginate(page, limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AddAddress appends addr. When addr is the default every other address is
// demoted first.
func (r *UserRepository) AddAddress(ctx context.Context, userID primitive.ObjectID, addr models.Address) error {
	if addr.IsDefault {
		if err := r.clearDefault(ctx, userID); err != nil {
			return err
		}
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$push": bson.M{"addresses": addr},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAddress replaces the address with addr.ID
func (r *UserRepository) UpdateAddress(ctx context.Context, userID primitive.ObjectID, addr models.Address) error {
	if addr.IsDefault {
		if err := r.clearDefault(ctx, userID); err != nil {
			return err
		}
	}
	return r.set(ctx, bson.M{"_id": userID, "addresses._id": addr.ID}, bson.M{"addresses.$": addr})
}

func (r *UserRepository) DeleteAddress(ctx context.Context, userID, addressID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": userID, "addresses._id": addressID},
		bson.M{
			"$pull": bson.M{"addresses": bson.M{"_id": addressID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) clearDefault(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"addresses.$[].is_default": false}})
	return err
}
