package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinProductImages = 1
	MaxProductImages = 3
)

const (
	ProductActive       = "active"
	ProductOutOfStock   = "out_of_stock"
	ProductDiscontinued = "discontinued"
)

// Units a product can be sold in
var Units = []string{"kg", "g", "lb", "piece", "bunch"}

// Product is an item listed by a retailer
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RetailerID  primitive.ObjectID `bson:"retailer_id" json:"retailerId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Unit        string             `bson:"unit" json:"unit"`
	Images      []Image            `bson:"images" json:"images"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

func ValidUnit(u string) bool {
	for _, v := range Units {
		if v == u {
			return true
		}
	}
	return false
}

func ValidProductStatus(s string) bool {
	switch s {
	case ProductActive, ProductOutOfStock, ProductDiscontinued:
		return true
	}
	return false
}

// ProductPatch carries the optional fields of a product update. Nil means
// unchanged.
type ProductPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

// ProductFilter narrows product listings
type ProductFilter struct {
	RetailerID *primitive.ObjectID
	Category   string
	Status     string
	Page       int
	Limit      int
}
