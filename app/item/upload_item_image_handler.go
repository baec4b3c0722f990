package item

import (
	"context"
	"mutsamarket/pkg/auth"
	"mutsamarket/pkg/httperror"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type UploadItemImageHandler struct {
	store       *Store
	maxFileSize int64
}

func NewUploadItemImageHandler(store *Store, maxFileSize int64) *UploadItemImageHandler {
	return &UploadItemImageHandler{
		store:       store,
		maxFileSize: maxFileSize,
	}
}

// UploadItemImageRequest is filled from the path and the multipart "image" part.
type UploadItemImageRequest struct {
	ItemID      int64 `params:"itemId"`
	Filename    string
	ContentType string
	Data        []byte
}

type UploadItemImageResponse struct {
	Item View `json:"item"`
}

func (h *UploadItemImageHandler) Handle(ctx context.Context, req *UploadItemImageRequest) (*UploadItemImageResponse, error) {
	principal, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}

	if len(req.Data) == 0 {
		return nil, httperror.BadRequest("upload.missing_file", "Image file is required (use 'image' field)", nil)
	}

	if h.maxFileSize > 0 && int64(len(req.Data)) > h.maxFileSize {
		return nil, httperror.BadRequest("upload.file_too_large", "Image exceeds the maximum upload size",
			fiber.Map{
				"size":    len(req.Data),
				"maxSize": h.maxFileSize,
			})
	}

	if req.ContentType != "" && !strings.HasPrefix(req.ContentType, "image/") && req.ContentType != fiber.MIMEOctetStream {
		return nil, httperror.BadRequest("upload.invalid_content_type", "Only image uploads are allowed",
			fiber.Map{"received": req.ContentType})
	}

	updated, err := h.store.UpdateImage(ctx, Upload{Filename: req.Filename, Data: req.Data}, req.ItemID, principal)
	if err != nil {
		return nil, err
	}

	return &UploadItemImageResponse{
		Item: updated,
	}, nil
}
