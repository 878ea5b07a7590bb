// Package storage wraps the object stores that hold product images, profile
// pictures and onboarding documents.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"vegmart/models"
)

// File is one upload payload. Body is read exactly once.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader stores and removes objects. Delete of a missing object succeeds.
type Uploader interface {
	Upload(ctx context.Context, f File, folder string) (models.Image, error)
	Delete(ctx context.Context, storageID string) error
}

// objectKey builds a collision free key under folder, keeping the original
// extension so the CDN serves the right content type.
func objectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 8 {
		ext = ""
	}
	return path.Join(folder, uuid.NewString()+ext)
}
