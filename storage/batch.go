package storage

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"vegmart/applog"
	"vegmart/models"
)

// UploadAll uploads files in parallel and returns the images in input order.
// When any upload fails the ones that succeeded are deleted before the error
// is returned, so the caller never owns a partial set. Deletes that fail are
// logged.
func UploadAll(ctx context.Context, up Uploader, files []File, folder string) ([]models.Image, error) {
	if len(files) == 0 {
		return nil, nil
	}
	images := make([]models.Image, len(files))
	done := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			img, err := up.Upload(gctx, f, folder)
			if err != nil {
				return err
			}
			images[i] = img
			done[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var uploaded []string
		for i, ok := range done {
			if ok {
				uploaded = append(uploaded, images[i].StorageID)
			}
		}
		// cleanup must not inherit the cancelled group context
		cleanupCtx := context.WithoutCancel(ctx)
		for id, derr := range DeleteAll(cleanupCtx, up, uploaded) {
			applog.Error(cleanupCtx, "storage.upload.rollback", derr, map[string]any{"storage_id": id})
		}
		return nil, err
	}
	return images, nil
}

// DeleteAll removes every id in parallel and returns the failures keyed by
// storage id. It never stops early.
func DeleteAll(ctx context.Context, up Uploader, ids []string) map[string]error {
	var (
		mu     sync.Mutex
		failed map[string]error
		wg     sync.WaitGroup
	)
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := up.Delete(ctx, id); err != nil {
				mu.Lock()
				if failed == nil {
					failed = make(map[string]error)
				}
				failed[id] = fmt.Errorf("delete %s: %w", id, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return failed
}
