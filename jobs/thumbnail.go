package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/ssth/ssth-inventory/internal/jobs"
	"github.com/ssth/ssth-inventory/internal/storage"
)

const defaultThumbnailWidth = 200

// ThumbnailJob downloads an item image, shrinks it and stores a JPEG next to
// the original under thumbnails/.
type ThumbnailJob struct {
	Store   storage.Store
	Width   int
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewThumbnailJob initialises the thumbnail handler.
func NewThumbnailJob(store storage.Store, width int, logger *slog.Logger, metrics *jobmetrics.Metrics) *ThumbnailJob {
	if width <= 0 {
		width = defaultThumbnailWidth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ThumbnailJob{Store: store, Width: width, Logger: logger, Metrics: metrics}
}

// Handle processes TaskItemThumbnail tasks.
func (j *ThumbnailJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Store == nil {
		return errors.New("thumbnail: handler not configured")
	}
	var payload ThumbnailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.ObjectKey == "" {
		return fmt.Errorf("thumbnail: bad payload: %w", asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskItemThumbnail)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.Logger.With(slog.String("item_code", payload.ItemCode), slog.String("object_key", payload.ObjectKey))

	data, err := j.Store.Get(ctx, payload.ObjectKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		logger.Warn("thumbnail source missing")
		return fmt.Errorf("thumbnail: %w: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		return fmt.Errorf("thumbnail: download: %w", err)
	}

	thumb, err := j.render(data)
	if err != nil {
		logger.Warn("thumbnail decode failed", slog.Any("error", err))
		return fmt.Errorf("thumbnail: %w: %w", err, asynq.SkipRetry)
	}

	key := storage.ThumbnailKey(payload.ObjectKey)
	if err := j.Store.Put(ctx, key, thumb, storage.ContentType("jpg")); err != nil {
		return fmt.Errorf("thumbnail: upload: %w", err)
	}
	logger.Info("thumbnail stored", slog.String("thumbnail_key", key), slog.Int("bytes", len(thumb)))
	return nil
}

func (j *ThumbnailJob) render(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() > j.Width {
		img = imaging.Resize(img, j.Width, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
