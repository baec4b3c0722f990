package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mutsamarket/domain"
	"mutsamarket/pkg/auth"
	"mutsamarket/pkg/events"
	"mutsamarket/pkg/httperror"
	"mutsamarket/pkg/pagination"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// imageBaseName is the stored file name of an item image, without extension.
const imageBaseName = "items"

// Upload is an uploaded image file.
type Upload struct {
	Filename string
	Data     []byte
}

type Options struct {
	StaticPrefix string
	Service      string
	Publisher    events.Publisher
}

// Store implements the sales item operations. Ownership is always checked by
// the repository query itself.
type Store struct {
	repository   Repository
	users        UserResolver
	images       ImageStore
	publisher    events.Publisher
	service      string
	staticPrefix string
}

func NewStore(repository Repository, users UserResolver, images ImageStore, opts Options) *Store {
	staticPrefix := strings.TrimSuffix(opts.StaticPrefix, "/")
	if staticPrefix == "" {
		staticPrefix = "/static"
	}

	return &Store{
		repository:   repository,
		users:        users,
		images:       images,
		publisher:    opts.Publisher,
		service:      opts.Service,
		staticPrefix: staticPrefix,
	}
}

// Enroll creates an item owned by principal with status "on sale".
func (s *Store) Enroll(ctx context.Context, dto Payload, principal auth.Principal) (View, error) {
	owner, err := s.users.Resolve(ctx, principal)
	if err != nil {
		return View{}, err
	}

	newItem := domain.SalesItem{
		Title:          dto.Title,
		Description:    dto.Description,
		MinPriceWanted: dto.MinPriceWanted,
		Status:         domain.StatusOnSale,
		UserID:         owner.ID,
		Username:       owner.Username,
	}

	if err := s.repository.CreateItem(ctx, &newItem); err != nil {
		return View{}, httperror.InternalServerError(
			"item.create.create_failed",
			"An error occurred while creating the item",
			err,
		)
	}

	events.Emit(ctx, s.publisher, s.service, events.ItemCreatedEvent, events.ItemCreatedPayload{
		ID:             newItem.ID,
		Title:          newItem.Title,
		Seller:         owner.Username,
		MinPriceWanted: newItem.MinPriceWanted,
		Status:         newItem.Status,
		CreatedAt:      newItem.CreatedAt,
	})

	return ViewOf(newItem), nil
}

func (s *Store) ReadOne(ctx context.Context, itemID int64) (View, error) {
	i, err := s.repository.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return View{}, httperror.NotFound("item.show.not_found", "Item not found", nil)
		}
		return View{}, httperror.InternalServerError("item.show.failed", "Failed to retrieve item", err)
	}

	return ViewOf(i), nil
}

// ReadAll returns every item. An empty store is reported as not found.
func (s *Store) ReadAll(ctx context.Context) ([]View, error) {
	items, err := s.repository.GetAllItems(ctx)
	if err != nil {
		return nil, httperror.InternalServerError("item.all.failed", "Failed to retrieve items", err)
	}

	if len(items) == 0 {
		return nil, httperror.NotFound("item.all.empty", "No items registered", nil)
	}

	views := make([]View, 0, len(items))
	for _, i := range items {
		views = append(views, ViewOf(i))
	}

	return views, nil
}

// ReadPage returns the zero-indexed page of items in stored order.
func (s *Store) ReadPage(ctx context.Context, page, limit int) (pagination.Page[View], error) {
	req := pagination.Of(page, limit)

	items, err := s.repository.GetItems(ctx, req.Limit(), req.Offset())
	if err != nil {
		return pagination.Page[View]{}, httperror.InternalServerError(
			"item.index.failed",
			"Failed to retrieve items",
			err,
		)
	}

	totalItems, err := s.repository.CountItems(ctx)
	if err != nil {
		return pagination.Page[View]{}, httperror.InternalServerError(
			"item.count_items.failed",
			"Failed to count items",
			err,
		)
	}

	return pagination.Map(pagination.New(items, req, totalItems), ViewOf), nil
}

// Update overwrites title, description and min price of an item owned by principal.
func (s *Store) Update(ctx context.Context, itemID int64, dto Payload, principal auth.Principal) (View, error) {
	changes := domain.SalesItem{
		ID:             itemID,
		Title:          dto.Title,
		Description:    dto.Description,
		MinPriceWanted: dto.MinPriceWanted,
	}

	ok, err := s.repository.UpdateUserItem(ctx, changes, principal.Name())
	if err != nil {
		return View{}, httperror.InternalServerError("item.update.update_failed", "An error occurred while updating the item", err)
	}
	if !ok {
		return View{}, httperror.NotFound("item.update.not_found", "Item not found", nil)
	}

	updated, err := s.repository.GetItem(ctx, itemID)
	if err != nil {
		return View{}, httperror.InternalServerError("item.update.reload_failed", "Failed to reload the item", err)
	}

	events.Emit(ctx, s.publisher, s.service, events.ItemUpdatedEvent, events.ItemUpdatedPayload{
		ID:             updated.ID,
		Title:          updated.Title,
		Description:    updated.Description,
		MinPriceWanted: updated.MinPriceWanted,
		UpdatedAt:      updated.UpdatedAt,
	})

	return ViewOf(updated), nil
}

// UpdateImage stores the image as <itemID>/items.<ext> and points the item's
// image URL at <static prefix>/<itemID>/items.<ext>.
func (s *Store) UpdateImage(ctx context.Context, upload Upload, itemID int64, principal auth.Principal) (View, error) {
	current, err := s.repository.GetUserItem(ctx, itemID, principal.Name())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return View{}, httperror.NotFound("item.image.not_found", "Item not found", nil)
		}
		return View{}, httperror.InternalServerError("item.image.lookup_failed", "Failed to retrieve item", err)
	}

	extension, err := ImageExtension(upload.Filename)
	if err != nil {
		return View{}, httperror.BadRequest("item.image.missing_extension", "Image file name must have an extension", upload.Filename)
	}

	dir := fmt.Sprintf("%d", itemID)
	fileName := imageBaseName + "." + extension
	key := dir + "/" + fileName

	if err := s.images.Prepare(ctx, dir); err != nil {
		zap.L().Error("Failed to create image directory", zap.Int64("itemId", itemID), zap.Error(err))
		return View{}, httperror.InternalServerError("item.image.mkdir_failed", "Failed to prepare image storage", nil)
	}

	if err := s.images.Put(ctx, key, upload.Data); err != nil {
		zap.L().Error("Failed to write image", zap.Int64("itemId", itemID), zap.String("key", key), zap.Error(err))
		return View{}, httperror.InternalServerError("item.image.write_failed", "Failed to store image", nil)
	}

	imageURL := fmt.Sprintf("%s/%d/%s", s.staticPrefix, itemID, fileName)
	zap.L().Info("Stored item image",
		zap.Int64("itemId", itemID),
		zap.String("key", key),
		zap.String("imageUrl", imageURL),
	)

	ok, err := s.repository.SetUserItemImage(ctx, itemID, principal.Name(), imageURL)
	if err != nil {
		return View{}, httperror.InternalServerError("item.image.store_failed", "Failed to save image metadata", err)
	}
	if !ok {
		// deleted or transferred between lookup and update
		return View{}, httperror.NotFound("item.image.not_found", "Item not found", nil)
	}

	current.ImageURL = &imageURL

	events.Emit(ctx, s.publisher, s.service, events.ItemImageUploadedEvent, events.ItemImageUploadedPayload{
		ItemID:    itemID,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	})

	return ViewOf(current), nil
}

// Delete removes an item owned by principal. It reports false, not an error,
// when no such item exists or the principal does not own it.
func (s *Store) Delete(ctx context.Context, itemID int64, principal auth.Principal) (bool, error) {
	imageURL, deleted, err := s.repository.DeleteUserItem(ctx, itemID, principal.Name())
	if err != nil {
		return false, httperror.InternalServerError("item.destroy.failed", "Failed to delete item", err)
	}

	if deleted {
		events.Emit(ctx, s.publisher, s.service, events.ItemDeletedEvent, events.ItemDeletedPayload{
			ID:        itemID,
			Seller:    principal.Name(),
			ImageURL:  imageURL,
			DeletedAt: time.Now().UTC(),
		})
	}

	return deleted, nil
}

var errNoExtension = errors.New("file name has no extension")

// ImageExtension returns the text after the last '.' of the base file name.
func ImageExtension(filename string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))

	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return "", errNoExtension
	}

	return base[idx+1:], nil
}
