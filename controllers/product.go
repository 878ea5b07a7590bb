package controllers

import (
	"context"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vegmart/apperrors"
	"vegmart/models"
	"vegmart/services"
	"vegmart/storage"
)

// ProductService is implemented by services.ProductService
type ProductService interface {
	Create(ctx context.Context, caller services.Caller, in services.ProductInput, files []storage.File) (*models.Product, error)
	Update(ctx context.Context, caller services.Caller, id primitive.ObjectID, in services.UpdateProductInput) (*models.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, category string, page, limit int) ([]models.Product, error)
	ListForRetailer(ctx context.Context, caller services.Caller, page, limit int) ([]models.Product, error)
	Delete(ctx context.Context, caller services.Caller, id primitive.ObjectID) error
}

// ProductController handles product-related requests
type ProductController struct {
	Products       ProductService
	MaxUploadBytes int64
}

// NewProductController creates a new ProductController
func NewProductController(products ProductService, maxUploadBytes int64) *ProductController {
	return &ProductController{Products: products, MaxUploadBytes: maxUploadBytes}
}

func parseFloat(r *http.Request, key string) (*float64, error) {
	v := formString(r, key)
	if v == nil {
		return nil, nil
	}
	f, err := strconv.ParseFloat(*v, 64)
	if err != nil {
		return nil, apperrors.Validation(key + " must be a number")
	}
	return &f, nil
}

func parseInt(r *http.Request, key string) (*int, error) {
	v := formString(r, key)
	if v == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(*v)
	if err != nil {
		return nil, apperrors.Validation(key + " must be a whole number")
	}
	return &n, nil
}

// productPatch reads the product fields present in the form
func productPatch(r *http.Request) (models.ProductPatch, error) {
	p := models.ProductPatch{
		Name:        formString(r, "name"),
		Description: formString(r, "description"),
		Category:    formString(r, "category"),
		Unit:        formString(r, "unit"),
		Status:      formString(r, "status"),
	}
	var err error
	if p.Price, err = parseFloat(r, "price"); err != nil {
		return p, err
	}
	if p.Quantity, err = parseInt(r, "quantity"); err != nil {
		return p, err
	}
	return p, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// CreateProduct handles adding a new product with 1 to 3 images
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	form := &multipartForm{maxFileBytes: pc.MaxUploadBytes}
	defer form.close()
	if err := form.parse(w, r, models.MaxProductImages); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := productPatch(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	files, err := form.files(r, "images", imageTypes)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in := services.ProductInput{
		Name:        deref(patch.Name),
		Description: deref(patch.Description),
		Category:    deref(patch.Category),
		Price:       deref(patch.Price),
		Quantity:    deref(patch.Quantity),
		Unit:        deref(patch.Unit),
		Status:      deref(patch.Status),
	}
	product, err := pc.Products.Create(r.Context(), caller, in, files)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Product created", product)
}

// UpdateProduct patches fields and reconciles images. existingImages lists
// the storage ids to keep, newImages are added after them.
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	form := &multipartForm{maxFileBytes: pc.MaxUploadBytes}
	defer form.close()
	if err := form.parse(w, r, models.MaxProductImages); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := productPatch(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	keep, err := keepList(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	files, err := form.files(r, "newImages", imageTypes)
	if err != nil {
		writeError(w, r, err)
		return
	}

	product, err := pc.Products.Update(r.Context(), caller, id, services.UpdateProductInput{
		Patch:          patch,
		ExistingImages: keep,
		NewImages:      files,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Product updated", product)
}

// GetProducts lists active products, optionally by category
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	products, err := pc.Products.List(r.Context(), r.URL.Query().Get("category"), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", products)
}

// GetRetailerProducts lists the caller's own products
func (pc *ProductController) GetRetailerProducts(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, limit := pageParams(r)
	products, err := pc.Products.ListForRetailer(r.Context(), caller, page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", products)
}

// GetProductByID retrieves a product by its ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	product, err := pc.Products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", product)
}

// DeleteProduct handles deleting a product
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := pc.Products.Delete(r.Context(), caller, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Product deleted", nil)
}
