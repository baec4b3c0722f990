package consumers

import (
	"context"
	"fmt"
	"mutsamarket/pkg/events"
	"strings"

	"go.uber.org/zap"
)

type MediaDeleter interface {
	Delete(ctx context.Context, key string) error
}

// MediaCleanupHandler removes the stored image of an item once the item is deleted.
type MediaCleanupHandler struct {
	media        MediaDeleter
	staticPrefix string
}

func NewMediaCleanupHandler(media MediaDeleter, staticPrefix string) *MediaCleanupHandler {
	return &MediaCleanupHandler{
		media:        media,
		staticPrefix: strings.TrimSuffix(staticPrefix, "/"),
	}
}

func (h *MediaCleanupHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	zap.L().Info("Item event received",
		zap.String("event", event.Event),
		zap.String("version", event.Version),
		zap.String("traceId", event.TraceID),
	)

	switch event.Event {
	case events.ItemDeletedEvent:
		return h.handleItemDeleted(ctx, event)
	default:
		zap.L().Warn("Unknown item event type", zap.String("event", event.Event))
		return nil
	}
}

func (h *MediaCleanupHandler) handleItemDeleted(ctx context.Context, event *events.Event) error {
	var payload events.ItemDeletedPayload
	if err := event.DecodePayload(&payload); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}

	if payload.ImageURL == nil || *payload.ImageURL == "" {
		return nil
	}

	key, ok := h.keyOf(*payload.ImageURL)
	if !ok {
		return fmt.Errorf("malformed payload - image url %q is outside %s", *payload.ImageURL, h.staticPrefix)
	}

	if err := h.media.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}

	zap.L().Info("Deleted item image",
		zap.Int64("itemId", payload.ID),
		zap.String("key", key),
		zap.String("traceId", event.TraceID),
	)

	return nil
}

// keyOf maps "<prefix>/<itemId>/<file>" back to the media key "<itemId>/<file>".
func (h *MediaCleanupHandler) keyOf(imageURL string) (string, bool) {
	key, found := strings.CutPrefix(imageURL, h.staticPrefix+"/")
	if !found || key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
