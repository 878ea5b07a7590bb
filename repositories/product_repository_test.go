package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"vegmart/models"
)

func TestUpdateDoc_OnlyPatchedFields(t *testing.T) {
	name := "Carrot"
	price := 40.5
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	images := []models.Image{{URL: "u1", StorageID: "s1"}}

	doc := updateDoc(models.ProductPatch{Name: &name, Price: &price}, images, now)

	set, ok := doc["$set"].(bson.M)
	assert.True(t, ok)
	assert.Equal(t, bson.M{
		"name":       "Carrot",
		"price":      40.5,
		"images":     images,
		"updated_at": now,
	}, set)
}

func TestUpdateDoc_NilImagesLeavesImagesAlone(t *testing.T) {
	doc := updateDoc(models.ProductPatch{}, nil, time.Now())
	set := doc["$set"].(bson.M)
	_, has := set["images"]
	assert.False(t, has)
}

func TestListFilter(t *testing.T) {
	rid := primitive.NewObjectID()
	f := listFilter(models.ProductFilter{RetailerID: &rid, Category: "leafy", Status: models.ProductActive})
	assert.Equal(t, bson.M{"retailer_id": rid, "category": "leafy", "status": "active"}, f)
	assert.Empty(t, listFilter(models.ProductFilter{}))
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(mongo.ErrNoDocuments), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, mapErr(dup), ErrDuplicate)

	other := errors.New("socket closed")
	assert.Equal(t, other, mapErr(other))
}

func TestPaginate(t *testing.T) {
	opts := paginate(3, 10)
	assert.Equal(t, int64(20), *opts.Skip)
	assert.Equal(t, int64(10), *opts.Limit)

	def := paginate(0, 0)
	assert.Equal(t, int64(0), *def.Skip)
	assert.Equal(t, int64(20), *def.Limit)
}
