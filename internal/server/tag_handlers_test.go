package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"myblog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagLifecycle(t *testing.T) {
	s, app, _ := newTestServer(t)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000001", true)
	token := tokenFor(t, s, admin.ID)

	resp, env := doRequest(t, app, http.MethodPost, "/api/tags", fiber.Map{"name": "Go Lang"}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "message: %s", env.Message)

	var tag models.Tag
	require.NoError(t, json.Unmarshal(env.Data, &tag))
	assert.Equal(t, "go-lang", tag.Slug)

	resp, env = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/tags/%d", tag.ID),
		fiber.Map{"name": "Golang"}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &tag))
	assert.Equal(t, "Golang", tag.Name)

	resp, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/tags/%d", tag.ID), nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, env = doRequest(t, app, http.MethodGet, "/api/tags", nil, "")
	var tags []models.Tag
	require.NoError(t, json.Unmarshal(env.Data, &tags))
	assert.Empty(t, tags)
}

func TestTagWrites_SuperuserOnly(t *testing.T) {
	s, app, _ := newTestServer(t)
	user := createTestUser(t, s.db, "user@example.com", "13800000001", false)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/tags", fiber.Map{"name": "go"}, tokenFor(t, s, user.ID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeleteTag_DetachesFromBlogs(t *testing.T) {
	s, app, _ := newTestServer(t)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000001", true)

	category := createTestCategory(t, s.db, "tech")
	blog := createTestBlog(t, s.db, category.ID, "tagged", models.BlogPublished)
	tag := &models.Tag{Name: "go", Slug: "go"}
	require.NoError(t, s.db.Create(tag).Error)
	require.NoError(t, s.db.Model(blog).Association("Tags").Append(tag))

	resp, _ := doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/tags/%d", tag.ID), nil, tokenFor(t, s, admin.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	count := s.db.Model(blog).Association("Tags").Count()
	assert.Zero(t, count, "blog keeps no reference to the deleted tag")
}

func TestGetTagBlogs_PublishedOnly(t *testing.T) {
	s, app, _ := newTestServer(t)

	category := createTestCategory(t, s.db, "tech")
	published := createTestBlog(t, s.db, category.ID, "visible", models.BlogPublished)
	draft := createTestBlog(t, s.db, category.ID, "hidden", models.BlogDraft)

	tag := &models.Tag{Name: "go", Slug: "go"}
	require.NoError(t, s.db.Create(tag).Error)
	require.NoError(t, s.db.Model(published).Association("Tags").Append(tag))
	require.NoError(t, s.db.Model(draft).Association("Tags").Append(tag))

	resp, env := doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/tags/%d/blogs", tag.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Count   int64         `json:"count"`
		Results []models.Blog `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, int64(1), data.Count)
	assert.Equal(t, published.ID, data.Results[0].ID)
}
