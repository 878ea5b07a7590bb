package services

import (
	"context"

	"vegmart/applog"
	"vegmart/models"
	"vegmart/storage"
)

func storageIDs(images []models.Image) []string {
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.StorageID)
	}
	return ids
}

// removeObjects deletes ids best effort. Failures are logged and dropped;
// the objects stay behind in the store.
func removeObjects(ctx context.Context, up storage.Uploader, action string, ids []string) {
	if len(ids) == 0 {
		return
	}
	for id, err := range storage.DeleteAll(ctx, up, ids) {
		applog.Error(ctx, action, err, map[string]any{"storage_id": id})
	}
}
