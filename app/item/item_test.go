package item_test

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"mutsamarket/app/item"
	"mutsamarket/app/user"
	"mutsamarket/infra/media"
	"mutsamarket/infra/sqldb"
	"mutsamarket/internal/testutil"
	"mutsamarket/pkg/auth"
	"mutsamarket/pkg/events"
	"mutsamarket/pkg/httperror"
	"mutsamarket/pkg/pagination"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo      *sqldb.Repository
	store     *item.Store
	mediaDir  string
	publisher *testutil.Publisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	repo := testutil.NewRepository(t)
	mediaDir := t.TempDir()
	publisher := &testutil.Publisher{}

	store := item.NewStore(repo, user.NewDirectory(repo), media.NewLocalStore(mediaDir), item.Options{
		StaticPrefix: "/static",
		Service:      "market",
		Publisher:    publisher,
	})

	return fixture{repo: repo, store: store, mediaDir: mediaDir, publisher: publisher}
}

func payload(title string) item.Payload {
	return item.Payload{
		Title:          title,
		Description:    "good condition",
		MinPriceWanted: decimal.NewFromInt(15000),
	}
}

func as(name string) auth.Principal {
	return auth.Principal{Username: name}
}

func TestEnrollAndReadOne(t *testing.T) {
	f := newFixture(t)
	testutil.CreateUser(t, f.repo, "alice")
	ctx := context.Background()

	created, err := f.store.Enroll(ctx, payload("bike"), as("alice"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "on sale", created.Status)
	assert.Nil(t, created.ImageURL)

	found, err := f.store.ReadOne(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "bike", found.Title)
	assert.Equal(t, "alice", found.Seller)
	assert.True(t, decimal.NewFromInt(15000).Equal(found.MinPriceWanted))

	assert.Equal(t, []string{events.ItemCreatedEvent}, f.publisher.Names())
}

func TestEnrollUnknownPrincipal(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.Enroll(context.Background(), payload("bike"), as("ghost"))
	assert.Equal(t, http.StatusInternalServerError, httperror.StatusOf(err))
}

func TestReadOneMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.ReadOne(context.Background(), 404)
	assert.Equal(t, http.StatusNotFound, httperror.StatusOf(err))
}

func TestReadAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.ReadAll(ctx)
	assert.Equal(t, http.StatusNotFound, httperror.StatusOf(err))

	alice := testutil.CreateUser(t, f.repo, "alice")
	testutil.CreateItem(t, f.repo, alice, "lamp")
	testutil.CreateItem(t, f.repo, alice, "desk")

	all, err := f.store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "lamp", all[0].Title)
	assert.Equal(t, "desk", all[1].Title)
}

func TestReadPage(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.repo, "alice")
	for i := 1; i <= 30; i++ {
		testutil.CreateItem(t, f.repo, alice, fmt.Sprintf("item-%d", i))
	}
	ctx := context.Background()

	first, err := f.store.ReadPage(ctx, 0, 25)
	require.NoError(t, err)
	assert.Len(t, first.Content, 25)
	assert.Equal(t, 30, first.TotalItems)
	assert.Equal(t, 2, first.TotalPages)
	assert.Equal(t, "item-1", first.Content[0].Title)

	second, err := f.store.ReadPage(ctx, 1, 25)
	require.NoError(t, err)
	require.Len(t, second.Content, 5)
	assert.Equal(t, "item-26", second.Content[0].Title)

	beyond, err := f.store.ReadPage(ctx, 5, 25)
	require.NoError(t, err)
	assert.Empty(t, beyond.Content)
}

func TestReadPageBounds(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.repo, "alice")
	for i := 1; i <= pagination.MaxSize+5; i++ {
		testutil.CreateItem(t, f.repo, alice, fmt.Sprintf("item-%d", i))
	}
	ctx := context.Background()

	capped, err := f.store.ReadPage(ctx, 0, 1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, pagination.MaxSize, capped.PageSize)
	assert.Len(t, capped.Content, pagination.MaxSize)
	assert.Equal(t, 2, capped.TotalPages)

	far, err := f.store.ReadPage(ctx, math.MaxInt, 25)
	require.NoError(t, err)
	assert.Empty(t, far.Content)
	assert.Equal(t, pagination.MaxSize+5, far.TotalItems)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.repo, "alice")
	testutil.CreateUser(t, f.repo, "bob")
	existing := testutil.CreateItem(t, f.repo, alice, "lamp")
	ctx := context.Background()

	_, err := f.store.Update(ctx, existing.ID, payload("stolen"), as("bob"))
	assert.Equal(t, http.StatusNotFound, httperror.StatusOf(err))

	untouched, err := f.store.ReadOne(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "lamp", untouched.Title)
	assert.Equal(t, "about lamp", untouched.Description)
	assert.True(t, existing.MinPriceWanted.Equal(untouched.MinPriceWanted))
	assert.Empty(t, f.publisher.Names())

	_, err = f.store.Update(ctx, 999, payload("nothing"), as("alice"))
	assert.Equal(t, http.StatusNotFound, httperror.StatusOf(err))

	updated, err := f.store.Update(ctx, existing.ID, payload("floor lamp"), as("alice"))
	require.NoError(t, err)
	assert.Equal(t, "floor lamp", updated.Title)
	assert.Equal(t, "on sale", updated.Status)

	found, err := f.store.ReadOne(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "floor lamp", found.Title)
	assert.Equal(t, []string{events.ItemUpdatedEvent}, f.publisher.Names())
}

func TestUpdateImage(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.repo, "alice")
	var seventh int64
	for i := 1; i <= 7; i++ {
		seventh = testutil.CreateItem(t, f.repo, alice, fmt.Sprintf("item-%d", i)).ID
	}
	require.EqualValues(t, 7, seventh)
	ctx := context.Background()

	updated, err := f.store.UpdateImage(ctx, item.Upload{Filename: "photo.png", Data: []byte("png-bytes")}, seventh, as("alice"))
	require.NoError(t, err)
	require.NotNil(t, updated.ImageURL)
	assert.Equal(t, "/static/7/items.png", *updated.ImageURL)

	data, err := os.ReadFile(filepath.Join(f.mediaDir, "7", "items.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	found, err := f.store.ReadOne(ctx, seventh)
	require.NoError(t, err)
	assert.Equal(t, "/static/7/items.png", *found.ImageURL)

	// a second upload overwrites the stored file
	_, err = f.store.UpdateImage(ctx, item.Upload{Filename: "again.png", Data: []byte("second")}, seventh, as("alice"))
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(f.mediaDir, "7", "items.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestUpdateImageRejections(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.repo, "alice")
	testutil.CreateUser(t, f.repo, "bob")
	existing := testutil.CreateItem(t, f.repo, alice, "lamp")
	ctx := context.Background()

	_, err := f.store.UpdateImage(ctx, item.Upload{Filename: "photo.png", Data: []byte("x")}, existing.ID, as("bob"))
	assert.Equal(t, http.StatusNotFound, httperror.StatusOf(err))

	_, err = f.store.UpdateImage(ctx, item.Upload{Filename: "photo", Data: []byte("x")}, existing.ID, as("alice"))
	assert.Equal(t, http.StatusBadRequest, httperror.StatusOf(err))

	entries, err := os.ReadDir(f.mediaDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	found, err := f.store.ReadOne(ctx, existing.ID)
	require.NoError(t, err)
	assert.Nil(t, found.ImageURL)
	assert.Empty(t, f.publisher.Names())
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.repo, "alice")
	testutil.CreateUser(t, f.repo, "bob")
	existing := testutil.CreateItem(t, f.repo, alice, "lamp")
	ctx := context.Background()

	deleted, err := f.store.Delete(ctx, existing.ID, as("bob"))
	require.NoError(t, err)
	assert.False(t, deleted)

	stillThere, err := f.store.ReadOne(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "lamp", stillThere.Title)
	assert.Empty(t, f.publisher.Names())

	deleted, err = f.store.Delete(ctx, existing.ID, as("alice"))
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = f.store.Delete(ctx, existing.ID, as("alice"))
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = f.store.ReadOne(ctx, existing.ID)
	assert.Equal(t, http.StatusNotFound, httperror.StatusOf(err))
	assert.Equal(t, []string{events.ItemDeletedEvent}, f.publisher.Names())
}

func TestImageExtension(t *testing.T) {
	cases := map[string]string{
		"photo.png":        "png",
		"archive.tar.gz":   "gz",
		"dir/pic.JPG":      "JPG",
		`C:\upload\a.jpeg`: "jpeg",
	}
	for name, want := range cases {
		got, err := item.ImageExtension(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	for _, name := range []string{"photo", "photo.", ""} {
		_, err := item.ImageExtension(name)
		assert.Error(t, err, name)
	}
}

func TestHandlersRequirePrincipal(t *testing.T) {
	f := newFixture(t)

	_, err := item.NewCreateItemHandler(f.store).Handle(context.Background(), &item.CreateItemRequest{Title: "x"})
	assert.Equal(t, http.StatusUnauthorized, httperror.StatusOf(err))

	_, err = item.NewDeleteItemHandler(f.store).Handle(context.Background(), &item.DeleteItemRequest{ItemID: 1})
	assert.Equal(t, http.StatusUnauthorized, httperror.StatusOf(err))
}

func TestCreateItemHandlerValidation(t *testing.T) {
	f := newFixture(t)
	testutil.CreateUser(t, f.repo, "alice")
	ctx := auth.WithPrincipal(context.Background(), as("alice"))
	h := item.NewCreateItemHandler(f.store)

	_, err := h.Handle(ctx, &item.CreateItemRequest{MinPriceWanted: decimal.NewFromInt(1)})
	assert.Equal(t, "item.create.validation_failed", httperror.CodeOf(err))

	_, err = h.Handle(ctx, &item.CreateItemRequest{Title: "bike", MinPriceWanted: decimal.NewFromInt(-1)})
	assert.Equal(t, "item.create.validation_failed", httperror.CodeOf(err))

	res, err := h.Handle(ctx, &item.CreateItemRequest{Title: "bike", MinPriceWanted: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Equal(t, "bike", res.Item.Title)
}

func TestDeleteItemHandler(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.repo, "alice")
	existing := testutil.CreateItem(t, f.repo, alice, "lamp")
	ctx := auth.WithPrincipal(context.Background(), as("alice"))
	h := item.NewDeleteItemHandler(f.store)

	_, err := h.Handle(ctx, &item.DeleteItemRequest{ItemID: existing.ID})
	assert.Equal(t, http.StatusNoContent, httperror.StatusOf(err))

	_, err = h.Handle(ctx, &item.DeleteItemRequest{ItemID: existing.ID})
	assert.Equal(t, http.StatusNotFound, httperror.StatusOf(err))
}

func TestUploadItemImageHandlerLimits(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.repo, "alice")
	existing := testutil.CreateItem(t, f.repo, alice, "lamp")
	ctx := auth.WithPrincipal(context.Background(), as("alice"))
	h := item.NewUploadItemImageHandler(f.store, 4)

	_, err := h.Handle(ctx, &item.UploadItemImageRequest{ItemID: existing.ID, Filename: "a.png"})
	assert.Equal(t, "upload.missing_file", httperror.CodeOf(err))

	_, err = h.Handle(ctx, &item.UploadItemImageRequest{ItemID: existing.ID, Filename: "a.png", Data: []byte("too large")})
	assert.Equal(t, "upload.file_too_large", httperror.CodeOf(err))

	_, err = h.Handle(ctx, &item.UploadItemImageRequest{ItemID: existing.ID, Filename: "a.txt", ContentType: "text/plain", Data: []byte("ok")})
	assert.Equal(t, "upload.invalid_content_type", httperror.CodeOf(err))

	res, err := h.Handle(ctx, &item.UploadItemImageRequest{ItemID: existing.ID, Filename: "a.gif", ContentType: "image/gif", Data: []byte("gif")})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("/static/%d/items.gif", existing.ID), *res.Item.ImageURL)
}
