package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"myblog/internal/cache"
	"myblog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWelcome_NotFoundWhenUnset(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp, env := doRequest(t, app, http.MethodGet, "/api/welcome", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, env.Code)
}

func TestPutWelcome_CreatesSingleton(t *testing.T) {
	s, app, _ := newTestServer(t)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000001", true)

	resp, env := doRequest(t, app, http.MethodPut, "/api/welcome", fiber.Map{
		"title":        "Hi there",
		"button_text":  "Enter",
		"descriptions": []string{"welcome", "enjoy"},
	}, tokenFor(t, s, admin.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode, "message: %s", env.Message)

	_, env = doRequest(t, app, http.MethodGet, "/api/welcome", nil, "")
	var welcome models.Welcome
	require.NoError(t, json.Unmarshal(env.Data, &welcome))
	assert.Equal(t, "Hi there", welcome.Title)
	assert.Equal(t, "Enter", welcome.ButtonText)
	require.Len(t, welcome.Descriptions, 2)
	assert.Equal(t, "welcome", welcome.Descriptions[0].Content)
}

func TestPutWelcome_ReplacesDescriptions(t *testing.T) {
	s, app, _ := newTestServer(t)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000001", true)
	token := tokenFor(t, s, admin.ID)

	resp, _ := doRequest(t, app, http.MethodPut, "/api/welcome", fiber.Map{
		"title": "Hi", "button_text": "Enter", "descriptions": []string{"one", "two", "three"},
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPut, "/api/welcome", fiber.Map{
		"title": "Hello", "button_text": "Go", "descriptions": []string{"fresh"},
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Still a single row, with only the new descriptions.
	var welcomes int64
	require.NoError(t, s.db.Model(&models.Welcome{}).Count(&welcomes).Error)
	assert.Equal(t, int64(1), welcomes)

	var descriptions int64
	require.NoError(t, s.db.Model(&models.Description{}).Count(&descriptions).Error)
	assert.Equal(t, int64(1), descriptions)

	_, env := doRequest(t, app, http.MethodGet, "/api/welcome", nil, "")
	var welcome models.Welcome
	require.NoError(t, json.Unmarshal(env.Data, &welcome))
	assert.Equal(t, "Hello", welcome.Title)
	require.Len(t, welcome.Descriptions, 1)
	assert.Equal(t, "fresh", welcome.Descriptions[0].Content)
}

func TestPutWelcome_Validation(t *testing.T) {
	s, app, _ := newTestServer(t)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000001", true)
	token := tokenFor(t, s, admin.ID)

	cases := []struct {
		name string
		body fiber.Map
	}{
		{"missing title", fiber.Map{"button_text": "Enter", "descriptions": []string{"hi"}}},
		{"title too long", fiber.Map{"title": "elevenchars", "button_text": "Enter", "descriptions": []string{"hi"}}},
		{"empty description", fiber.Map{"title": "Hi", "button_text": "Enter", "descriptions": []string{""}}},
		{"description too long", fiber.Map{"title": "Hi", "button_text": "Enter", "descriptions": []string{"elevenchars"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := doRequest(t, app, http.MethodPut, "/api/welcome", tc.body, token)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestPutWelcome_SuperuserOnly(t *testing.T) {
	s, app, _ := newTestServer(t)
	user := createTestUser(t, s.db, "user@example.com", "13800000001", false)

	resp, _ := doRequest(t, app, http.MethodPut, "/api/welcome", fiber.Map{
		"title": "Hi", "button_text": "Enter", "descriptions": []string{"hi"},
	}, tokenFor(t, s, user.ID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPutWelcome_InvalidatesCache(t *testing.T) {
	s, app, _ := newTestServer(t)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000001", true)
	token := tokenFor(t, s, admin.ID)

	resp, _ := doRequest(t, app, http.MethodPut, "/api/welcome", fiber.Map{
		"title": "Hi", "button_text": "Enter", "descriptions": []string{"hi"},
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doRequest(t, app, http.MethodGet, "/api/welcome", nil, "")
	require.Equal(t, int64(1), s.redis.Exists(context.Background(), cache.WelcomeKey).Val())

	resp, _ = doRequest(t, app, http.MethodPut, "/api/welcome", fiber.Map{
		"title": "Hello", "button_text": "Enter", "descriptions": []string{"hi"},
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, s.redis.Exists(context.Background(), cache.WelcomeKey).Val())

	_, env := doRequest(t, app, http.MethodGet, "/api/welcome", nil, "")
	var welcome models.Welcome
	require.NoError(t, json.Unmarshal(env.Data, &welcome))
	assert.Equal(t, "Hello", welcome.Title)
}
