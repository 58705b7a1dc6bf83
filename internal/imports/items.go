package imports

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/ssth/ssth-inventory/internal/masterdata/items"
	"github.com/ssth/ssth-inventory/internal/storage"
)

// ItemStore is the item persistence the importer needs.
type ItemStore interface {
	FindByCode(ctx context.Context, code string) (items.Item, bool, error)
	Create(ctx context.Context, item items.Item) (items.Item, error)
	Update(ctx context.Context, id uuid.UUID, changes items.Changes) error
}

// CategoryResolver finds or creates a category by name.
type CategoryResolver interface {
	Resolve(ctx context.Context, name string) (uuid.UUID, error)
}

// ThumbnailQueue schedules thumbnail generation for an uploaded image.
type ThumbnailQueue interface {
	EnqueueThumbnail(ctx context.Context, itemCode, objectKey string) error
}

// ItemImporter creates or updates items from sheet rows.
type ItemImporter struct {
	items      ItemStore
	categories CategoryResolver
	store      storage.Store
	thumbnails ThumbnailQueue
	logger     *slog.Logger
	now        func() time.Time
}

// NewItemImporter wires an importer. store and thumbnails may be nil; rows
// with images then record an image error.
func NewItemImporter(itemStore ItemStore, categories CategoryResolver, store storage.Store, thumbnails ThumbnailQueue, logger *slog.Logger) *ItemImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemImporter{
		items:      itemStore,
		categories: categories,
		store:      store,
		thumbnails: thumbnails,
		logger:     logger,
		now:        time.Now,
	}
}

// Import processes rows sequentially. Rows without an item code contribute
// nothing to the result.
func (imp *ItemImporter) Import(ctx context.Context, rows []Row, userID uuid.UUID, images map[string][]byte) ItemImportResult {
	result := NewItemImportResult()
	for _, row := range rows {
		rec, ok, err := NormalizeItemRow(row)
		if !ok {
			continue
		}
		if err != nil {
			result.Add(ItemOutcome{ItemCode: rec.ItemCode, Status: StatusSkipped, Err: err})
			continue
		}
		result.Add(imp.Process(ctx, rec, userID, images))
	}
	return result
}

// Process writes one validated row. Image problems never fail the row.
func (imp *ItemImporter) Process(ctx context.Context, rec ItemRow, userID uuid.UUID, images map[string][]byte) ItemOutcome {
	out := ItemOutcome{ItemCode: rec.ItemCode}

	var categoryID *uuid.UUID
	if id, err := imp.categories.Resolve(ctx, rec.Category); err != nil {
		imp.logger.WarnContext(ctx, "category resolution failed, importing without category",
			slog.String("item_code", rec.ItemCode), slog.String("category", rec.Category), slog.Any("error", err))
	} else if id != uuid.Nil {
		categoryID = &id
	}

	var imagePath, imageURL *string
	if rec.ImageFilename != "" {
		key, err := imp.uploadImage(ctx, rec, images)
		if err != nil {
			out.ImageError = err.Error()
		} else {
			url := imp.store.URL(key)
			imagePath, imageURL = &key, &url
			out.ImageUploaded = true
		}
	}

	existing, found, err := imp.items.FindByCode(ctx, rec.ItemCode)
	if err != nil {
		out.Status, out.Err = StatusSkipped, err
		return out
	}

	if found {
		err = imp.items.Update(ctx, existing.ID, items.Changes{
			Description:  rec.Description,
			CategoryID:   categoryID,
			BaseUOM:      rec.BaseUOM,
			UnitCost:     rec.UnitCost,
			ReorderLevel: rec.ReorderLevel,
			ImagePath:    imagePath,
			ImageURL:     imageURL,
		})
		if err != nil {
			out.Status, out.Err = StatusSkipped, err
			return out
		}
		out.Status = StatusUpdated
	} else {
		creator := userID
		_, err = imp.items.Create(ctx, items.Item{
			Code:         rec.ItemCode,
			Description:  rec.Description,
			CategoryID:   categoryID,
			BaseUOM:      rec.BaseUOM,
			UnitCost:     rec.UnitCost,
			ReorderLevel: rec.ReorderLevel,
			ImagePath:    imagePath,
			ImageURL:     imageURL,
			CreatedBy:    &creator,
		})
		if err != nil {
			out.Status, out.Err = StatusSkipped, err
			return out
		}
		out.Status = StatusCreated
	}

	if out.ImageUploaded && imp.thumbnails != nil {
		if err := imp.thumbnails.EnqueueThumbnail(ctx, rec.ItemCode, *imagePath); err != nil {
			imp.logger.WarnContext(ctx, "thumbnail enqueue failed",
				slog.String("item_code", rec.ItemCode), slog.Any("error", err))
		}
	}
	return out
}

func (imp *ItemImporter) uploadImage(ctx context.Context, rec ItemRow, images map[string][]byte) (string, error) {
	name := ImageKey(rec.ImageFilename)
	data, ok := images[name]
	if !ok {
		return "", fmt.Errorf("image not found in upload: %s", rec.ImageFilename)
	}
	if imp.store == nil {
		return "", fmt.Errorf("image storage is not configured")
	}
	key := storage.ItemImageKey(rec.ItemCode, name, imp.now())
	if err := imp.store.Put(ctx, key, data, storage.ContentType(path.Ext(name))); err != nil {
		return "", err
	}
	return key, nil
}
