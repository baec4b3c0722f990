package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mutsamarket/app/comment"
	"mutsamarket/app/item"
	"mutsamarket/app/user"
	"mutsamarket/infra/media"
	"mutsamarket/internal/server"
	"mutsamarket/internal/testutil"
	"mutsamarket/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokerState bool

func (b brokerState) IsHealthy() bool { return bool(b) }

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppWithBroker(t, nil)
}

func newTestAppWithBroker(t *testing.T, broker server.BrokerHealth) *fiber.App {
	t.Helper()

	repo := testutil.NewRepository(t)
	images := media.NewLocalStore(t.TempDir())
	directory := user.NewDirectory(repo)

	return server.New(server.Options{
		Users:        repo,
		Items:        item.NewStore(repo, directory, images, item.Options{StaticPrefix: "/static", Service: "market"}),
		Comments:     comment.NewStore(repo, directory, comment.Options{Service: "market"}),
		Tokens:       auth.NewTokenIssuer("test-secret", time.Hour, "market"),
		Media:        images,
		Health:       repo,
		Broker:       broker,
		StaticPrefix: "/static",
		MaxImageSize: 1024,
	})
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 && resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func login(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp, _ := call(t, app, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username":      username,
		"password":      "password123",
		"passwordCheck": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := call(t, app, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return body["token"].(string)
}

func uploadRequest(t *testing.T, path, token, filename string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHealth(t *testing.T) {
	resp, body := call(t, newTestApp(t), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestHealthReportsBroker(t *testing.T) {
	resp, body := call(t, newTestAppWithBroker(t, brokerState(true)), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["events"])

	resp, body = call(t, newTestAppWithBroker(t, brokerState(false)), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unavailable", body["events"])
}

func TestItemLifecycle(t *testing.T) {
	app := newTestApp(t)
	alice := login(t, app, "alice")
	bob := login(t, app, "bob")

	resp, body := call(t, app, http.MethodGet, "/api/v1/items/all", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "item.all.empty", body["code"])

	resp, _ = call(t, app, http.MethodPost, "/api/v1/items", "", map[string]any{"title": "bike", "minPriceWanted": 100})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = call(t, app, http.MethodPost, "/api/v1/items", alice, map[string]any{
		"title":          "bike",
		"description":    "red",
		"minPriceWanted": 100,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := body["item"].(map[string]any)
	id := int64(created["id"].(float64))
	assert.Equal(t, "on sale", created["status"])

	path := fmt.Sprintf("/api/v1/items/%d", id)

	resp, _ = call(t, app, http.MethodPut, path, bob, map[string]any{"title": "mine", "minPriceWanted": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = call(t, app, http.MethodPut, path, alice, map[string]any{"title": "blue bike", "minPriceWanted": 120})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "blue bike", body["item"].(map[string]any)["title"])

	resp, body = call(t, app, http.MethodGet, "/api/v1/items?page=0&limit=10", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["totalItems"])

	resp, _ = call(t, app, http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestImageUploadAndServe(t *testing.T) {
	app := newTestApp(t)
	alice := login(t, app, "alice")

	resp, body := call(t, app, http.MethodPost, "/api/v1/items", alice, map[string]any{"title": "lamp", "minPriceWanted": 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := int64(body["item"].(map[string]any)["id"].(float64))
	path := fmt.Sprintf("/api/v1/items/%d/image", id)

	resp, body = send(t, app, uploadRequest(t, path, alice, "photo", []byte("data")))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "item.image.missing_extension", body["code"])

	resp, body = send(t, app, uploadRequest(t, path, alice, "big.png", bytes.Repeat([]byte("x"), 2048)))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "upload.file_too_large", body["code"])

	resp, body = send(t, app, uploadRequest(t, path, alice, "photo.png", []byte("png-bytes")))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	imageURL := body["item"].(map[string]any)["imageUrl"].(string)
	assert.Equal(t, fmt.Sprintf("/static/%d/items.png", id), imageURL)

	req := httptest.NewRequest(http.MethodGet, imageURL, nil)
	served, err := app.Test(req, -1)
	require.NoError(t, err)
	defer served.Body.Close()
	assert.Equal(t, http.StatusOK, served.StatusCode)
	assert.Equal(t, "image/png", served.Header.Get("Content-Type"))
	raw, err := io.ReadAll(served.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(raw))

	resp, _ = call(t, app, http.MethodGet, fmt.Sprintf("/static/%d/missing.png", id), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommentFlow(t *testing.T) {
	app := newTestApp(t)
	seller := login(t, app, "seller")
	buyer := login(t, app, "buyer")
	stranger := login(t, app, "stranger")

	resp, body := call(t, app, http.MethodPost, "/api/v1/items", seller, map[string]any{"title": "desk", "minPriceWanted": 50})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	itemID := int64(body["item"].(map[string]any)["id"].(float64))
	comments := fmt.Sprintf("/api/v1/items/%d/comments", itemID)

	resp, _ = call(t, app, http.MethodPost, "/api/v1/items/999/comments", buyer, map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = call(t, app, http.MethodPost, comments, buyer, map[string]string{"content": "still available?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	commentID := int64(body["comment"].(map[string]any)["id"].(float64))
	one := fmt.Sprintf("%s/%d", comments, commentID)

	resp, _ = call(t, app, http.MethodPut, one, seller, map[string]string{"content": "edited"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPut, one, buyer, map[string]string{"content": "is it available?"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = call(t, app, http.MethodPut, one+"/reply", buyer, map[string]string{"reply": "first"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["outcome"])

	resp, body = call(t, app, http.MethodPut, one+"/reply", seller, map[string]string{"reply": "yes"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["outcome"])

	resp, _ = call(t, app, http.MethodPut, one+"/reply", stranger, map[string]string{"reply": "spam"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = call(t, app, http.MethodGet, comments+"?page=0", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	content := body["content"].([]any)
	require.Len(t, content, 1)
	assert.Equal(t, "yes", content[0].(map[string]any)["reply"])
	assert.Equal(t, "is it available?", content[0].(map[string]any)["content"])

	resp, _ = call(t, app, http.MethodDelete, one, seller, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, http.MethodDelete, one, buyer, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestInvalidPathParam(t *testing.T) {
	resp, body := call(t, newTestApp(t), http.MethodGet, "/api/v1/items/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "request.invalid_path_params", body["code"])
}
