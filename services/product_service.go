package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vegmart/apperrors"
	"vegmart/applog"
	"vegmart/models"
	"vegmart/repositories"
	"vegmart/storage"
)

const productImageFolder = "products"

// ProductInput is the payload of a product create
type ProductInput struct {
	Name        string
	Description string
	Category    string
	Price       float64
	Quantity    int
	Unit        string
	Status      string
}

// UpdateProductInput is the payload of a product update. ExistingImages
// lists the storage ids to keep; nil keeps every current image, an empty
// slice keeps none.
type UpdateProductInput struct {
	Patch          models.ProductPatch
	ExistingImages []string
	NewImages      []storage.File
}

// ProductService handles product CRUD and the product image set
type ProductService struct {
	products  ProductStore
	retailers RetailerStore
	images    storage.Uploader
}

func NewProductService(products ProductStore, retailers RetailerStore, images storage.Uploader) *ProductService {
	return &ProductService{products: products, retailers: retailers, images: images}
}

// requireApproved lets retailers write products only once an admin approved
// their shop. Admins pass.
func (s *ProductService) requireApproved(ctx context.Context, caller Caller) error {
	if caller.IsAdmin() {
		return nil
	}
	r, err := s.retailers.FindByUserID(ctx, caller.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.Forbidden("Retailer profile not found")
	}
	if err != nil {
		return apperrors.Internal("Error fetching retailer", err)
	}
	if r.Status != models.OnboardingApproved {
		return apperrors.Forbidden("Retailer account is " + r.Status + ", products can be added once approved")
	}
	return nil
}

func (s *ProductService) load(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Error fetching product", err)
	}
	return p, nil
}

func authorizeOwner(caller Caller, p *models.Product) error {
	if caller.IsAdmin() || p.RetailerID == caller.UserID {
		return nil
	}
	return apperrors.Forbidden("You can only modify your own products")
}

func checkImageCount(n int) error {
	if n < models.MinProductImages || n > models.MaxProductImages {
		return apperrors.Validation(fmt.Sprintf("A product needs between %d and %d images", models.MinProductImages, models.MaxProductImages))
	}
	return nil
}

func validatePatch(p models.ProductPatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperrors.Validation("Name cannot be empty")
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return apperrors.Validation("Category cannot be empty")
	}
	if p.Price != nil && *p.Price <= 0 {
		return apperrors.Validation("Price must be greater than zero")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return apperrors.Validation("Quantity cannot be negative")
	}
	if p.Unit != nil && !models.ValidUnit(*p.Unit) {
		return apperrors.Validation("Unit must be one of " + strings.Join(models.Units, ", "))
	}
	if p.Status != nil && !models.ValidProductStatus(*p.Status) {
		return apperrors.Validation("Invalid product status")
	}
	return nil
}

// Create validates in, uploads the images in parallel and stores the product.
// Uploaded images are removed again if the product cannot be stored. The
// caller's shop must be approved.
func (s *ProductService) Create(ctx context.Context, caller Caller, in ProductInput, files []storage.File) (*models.Product, error) {
	if in.Status == "" {
		in.Status = models.ProductActive
	}
	in.Name, in.Category = strings.TrimSpace(in.Name), strings.TrimSpace(in.Category)
	if in.Name == "" || in.Category == "" || in.Unit == "" {
		return nil, apperrors.Validation("Name, category and unit are required")
	}
	if err := validatePatch(models.ProductPatch{Price: &in.Price, Quantity: &in.Quantity, Unit: &in.Unit, Status: &in.Status}); err != nil {
		return nil, err
	}
	if err := checkImageCount(len(files)); err != nil {
		return nil, err
	}
	if err := s.requireApproved(ctx, caller); err != nil {
		return nil, err
	}

	comp := newCompensations(ctx)
	defer comp.run()

	uploaded, err := storage.UploadAll(ctx, s.images, files, productImageFolder)
	if err != nil {
		return nil, apperrors.Upstream("Failed to upload product images", err)
	}
	comp.add(func(ctx context.Context) {
		removeObjects(ctx, s.images, "product.create.rollback", storageIDs(uploaded))
	})

	p := &models.Product{
		RetailerID:  caller.UserID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Unit:        in.Unit,
		Images:      uploaded,
		Status:      in.Status,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, apperrors.Internal("Error creating product", err)
	}
	comp.commit()
	applog.Audit(ctx, "product.create", map[string]any{"product_id": p.ID.Hex()})
	return p, nil
}

// Update applies the field patch and reconciles the image set.
//
// Current images whose storage id is not in ExistingImages are dropped, new
// files are uploaded in parallel, and the product is written with the kept
// images followed by the uploaded ones. The final count must be 1..3 or
// nothing happens. A failed upload or write removes what was uploaded. Dropped
// images are deleted from storage only after the write succeeds, best effort.
func (s *ProductService) Update(ctx context.Context, caller Caller, id primitive.ObjectID, in UpdateProductInput) (*models.Product, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(caller, current); err != nil {
		return nil, err
	}
	if err := s.requireApproved(ctx, caller); err != nil {
		return nil, err
	}
	if err := validatePatch(in.Patch); err != nil {
		return nil, err
	}

	keep, toDelete := partitionImages(current.Images, in.ExistingImages)
	if err := checkImageCount(len(keep) + len(in.NewImages)); err != nil {
		return nil, err
	}

	comp := newCompensations(ctx)
	defer comp.run()

	uploaded, err := storage.UploadAll(ctx, s.images, in.NewImages, productImageFolder)
	if err != nil {
		return nil, apperrors.Upstream("Failed to upload product images", err)
	}
	comp.add(func(ctx context.Context) {
		removeObjects(ctx, s.images, "product.update.rollback", storageIDs(uploaded))
	})

	images := make([]models.Image, 0, len(keep)+len(uploaded))
	images = append(images, keep...)
	images = append(images, uploaded...)

	updated, err := s.products.Update(ctx, id, in.Patch, images)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Error updating product", err)
	}
	comp.commit()

	removeObjects(ctx, s.images, "product.update.cleanup", storageIDs(toDelete))
	applog.Audit(ctx, "product.update", map[string]any{
		"product_id": id.Hex(), "kept": len(keep), "added": len(uploaded), "dropped": len(toDelete),
	})
	return updated, nil
}

// partitionImages splits current into the images named by keepIDs and the
// rest. A nil keepIDs keeps everything. Unknown ids are ignored.
func partitionImages(current []models.Image, keepIDs []string) (keep, drop []models.Image) {
	keep = []models.Image{}
	if keepIDs == nil {
		return append(keep, current...), nil
	}
	wanted := make(map[string]bool, len(keepIDs))
	for _, id := range keepIDs {
		wanted[id] = true
	}
	for _, img := range current {
		if wanted[img.StorageID] {
			keep = append(keep, img)
		} else {
			drop = append(drop, img)
		}
	}
	return keep, drop
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.load(ctx, id)
}

// List returns active products for the storefront
func (s *ProductService) List(ctx context.Context, category string, page, limit int) ([]models.Product, error) {
	products, err := s.products.List(ctx, models.ProductFilter{
		Category: strings.TrimSpace(category),
		Status:   models.ProductActive,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, apperrors.Internal("Error fetching products", err)
	}
	return products, nil
}

// ListForRetailer returns every product of the calling retailer, any status
func (s *ProductService) ListForRetailer(ctx context.Context, caller Caller, page, limit int) ([]models.Product, error) {
	rid := caller.UserID
	products, err := s.products.List(ctx, models.ProductFilter{RetailerID: &rid, Page: page, Limit: limit})
	if err != nil {
		return nil, apperrors.Internal("Error fetching products", err)
	}
	return products, nil
}

// Delete removes the product, then its images best effort
func (s *ProductService) Delete(ctx context.Context, caller Caller, id primitive.ObjectID) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOwner(caller, p); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("Product not found")
		}
		return apperrors.Internal("Error deleting product", err)
	}
	removeObjects(ctx, s.images, "product.delete.cleanup", storageIDs(p.Images))
	applog.Audit(ctx, "product.delete", map[string]any{"product_id": id.Hex()})
	return nil
}
