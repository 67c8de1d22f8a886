package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"myblog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUsers_ListsPublicFields(t *testing.T) {
	s, app, _ := newTestServer(t)

	admin := createTestUser(t, s.db, "admin@example.com", "13800000001", true)
	createTestUser(t, s.db, "user@example.com", "13800000002", false)

	resp, env := doRequest(t, app, http.MethodGet, "/api/users", nil, tokenFor(t, s, admin.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []models.PublicUser
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 2)
	assert.NotContains(t, string(env.Data), "password")
}

func TestUpdateUser_SelfRename(t *testing.T) {
	s, app, _ := newTestServer(t)

	user := createTestUser(t, s.db, "user@example.com", "13800000001", false)

	resp, env := doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d", user.ID),
		fiber.Map{"name": "renamed"}, tokenFor(t, s, user.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode, "message: %s", env.Message)

	var refreshed models.User
	require.NoError(t, s.db.First(&refreshed, user.ID).Error)
	assert.Equal(t, "renamed", refreshed.Name)
}

func TestUpdateUser_OtherUserForbidden(t *testing.T) {
	s, app, _ := newTestServer(t)

	user := createTestUser(t, s.db, "user@example.com", "13800000001", false)
	victim := createTestUser(t, s.db, "victim@example.com", "13800000002", false)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000003", true)

	resp, _ := doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d", victim.ID),
		fiber.Map{"name": "hijacked"}, tokenFor(t, s, user.ID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d", victim.ID),
		fiber.Map{"name": "adminset"}, tokenFor(t, s, admin.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateUser_NameValidation(t *testing.T) {
	s, app, _ := newTestServer(t)

	user := createTestUser(t, s.db, "user@example.com", "13800000001", false)
	token := tokenFor(t, s, user.ID)
	path := fmt.Sprintf("/api/users/%d", user.ID)

	resp, _ := doRequest(t, app, http.MethodPut, path, fiber.Map{"name": "x"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPut, path, fiber.Map{"name": strings.Repeat("x", 11)}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteUser_SelfAndSuperuserRules(t *testing.T) {
	s, app, _ := newTestServer(t)

	user := createTestUser(t, s.db, "user@example.com", "13800000001", false)
	victim := createTestUser(t, s.db, "victim@example.com", "13800000002", false)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000003", true)
	admin2 := createTestUser(t, s.db, "admin2@example.com", "13800000004", true)

	// A regular user cannot delete someone else.
	resp, _ := doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d", victim.ID), nil, tokenFor(t, s, user.ID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// A superuser can.
	resp, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d", victim.ID), nil, tokenFor(t, s, admin.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Nobody deletes a superuser, not even another superuser.
	resp, env := doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d", admin2.ID), nil, tokenFor(t, s, admin.ID))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "superuser")

	// Self-deletion works for regular accounts.
	resp, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d", user.ID), nil, tokenFor(t, s, user.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, s.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func uploadAvatarRequest(t *testing.T, contentType string, payload []byte) (*http.Request, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="avatar"; filename="me.jpg"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/avatar/upload", &buf)
	return req, writer.FormDataContentType()
}

func TestUploadAvatar(t *testing.T) {
	s, app, _ := newTestServer(t)
	user := createTestUser(t, s.db, "user@example.com", "13800000001", false)

	req, contentType := uploadAvatarRequest(t, "image/jpeg", []byte("fake jpeg bytes"))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, s, user.ID))

	resp, err := app.Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))

	var data struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, strings.HasPrefix(data.URL, "/media/avatar/avatar_"), "url: %s", data.URL)

	var refreshed models.User
	require.NoError(t, s.db.First(&refreshed, user.ID).Error)
	assert.Equal(t, data.URL, refreshed.Avatar)
}

func TestUploadAvatar_RejectsNonJPEG(t *testing.T) {
	s, app, _ := newTestServer(t)
	user := createTestUser(t, s.db, "user@example.com", "13800000001", false)

	req, contentType := uploadAvatarRequest(t, "image/png", []byte("png bytes"))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, s, user.ID))

	resp, err := app.Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var refreshed models.User
	require.NoError(t, s.db.First(&refreshed, user.ID).Error)
	assert.Equal(t, models.DefaultAvatar, refreshed.Avatar)
}
