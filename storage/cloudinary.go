package storage

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"vegmart/models"
)

// Cloudinary stores images on the Cloudinary CDN. StorageID is the public id.
type Cloudinary struct {
	cld        *cloudinary.Cloudinary
	rootFolder string
}

func NewCloudinary(cloudName, apiKey, apiSecret, rootFolder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, rootFolder: rootFolder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, f File, folder string) (models.Image, error) {
	res, err := c.cld.Upload.Upload(ctx, f.Body, uploader.UploadParams{
		Folder:   path.Join(c.rootFolder, folder),
		PublicID: uuid.NewString(),
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("cloudinary upload %s: %w", f.Name, err)
	}
	if res.Error.Message != "" {
		return models.Image{}, fmt.Errorf("cloudinary upload %s: %s", f.Name, res.Error.Message)
	}
	return models.Image{URL: res.SecureURL, StorageID: res.PublicID}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, storageID string) error {
	if storageID == "" {
		return errors.New("cloudinary destroy: empty public id")
	}
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: storageID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", storageID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", storageID, res.Error.Message)
	}
	// "not found" means someone already removed it
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy %s: result %q", storageID, res.Result)
	}
	return nil
}
