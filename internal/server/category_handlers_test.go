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

func TestCreateCategory_DerivesSlug(t *testing.T) {
	s, app, _ := newTestServer(t)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000001", true)

	resp, env := doRequest(t, app, http.MethodPost, "/api/categories",
		fiber.Map{"name": "Web Dev"}, tokenFor(t, s, admin.ID))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "message: %s", env.Message)

	var created models.Category
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "web-dev", created.Slug)
}

func TestCreateCategory_Validation(t *testing.T) {
	s, app, _ := newTestServer(t)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000001", true)
	token := tokenFor(t, s, admin.ID)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/categories", fiber.Map{"name": ""}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPost, "/api/categories", fiber.Map{"name": "elevenchars"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown parent.
	resp, _ = doRequest(t, app, http.MethodPost, "/api/categories",
		fiber.Map{"name": "child", "parent_id": 999}, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetCategories_NestsChildren(t *testing.T) {
	s, app, _ := newTestServer(t)

	parent := createTestCategory(t, s.db, "parent")
	child := &models.Category{Name: "child", Slug: "cat-child", ParentID: &parent.ID}
	require.NoError(t, s.db.Create(child).Error)

	resp, env := doRequest(t, app, http.MethodGet, "/api/categories", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var categories []models.Category
	require.NoError(t, json.Unmarshal(env.Data, &categories))
	require.Len(t, categories, 1, "only top-level categories at the root")
	require.Len(t, categories[0].Children, 1)
	assert.Equal(t, "child", categories[0].Children[0].Name)
}

func TestUpdateCategory_RejectsSelfParent(t *testing.T) {
	s, app, _ := newTestServer(t)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000001", true)

	category := createTestCategory(t, s.db, "loop")

	resp, env := doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/categories/%d", category.ID),
		fiber.Map{"name": "loop", "parent_id": category.ID}, tokenFor(t, s, admin.ID))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "own parent")
}

func TestDeleteCategory_RejectedWhileReferenced(t *testing.T) {
	s, app, _ := newTestServer(t)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000001", true)
	token := tokenFor(t, s, admin.ID)

	category := createTestCategory(t, s.db, "busy")
	createTestBlog(t, s.db, category.ID, "in-category", models.BlogPublished)

	resp, env := doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/categories/%d", category.ID), nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "referenced")

	// Once the blog is gone the category can be removed.
	require.NoError(t, s.db.Where("category_id = ?", category.ID).Delete(&models.Blog{}).Error)
	resp, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/categories/%d", category.ID), nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeleteCategory_DetachesChildren(t *testing.T) {
	s, app, _ := newTestServer(t)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000001", true)

	parent := createTestCategory(t, s.db, "parent")
	child := &models.Category{Name: "child", Slug: "cat-child", ParentID: &parent.ID}
	require.NoError(t, s.db.Create(child).Error)

	resp, _ := doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/categories/%d", parent.ID), nil, tokenFor(t, s, admin.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var refreshed models.Category
	require.NoError(t, s.db.First(&refreshed, child.ID).Error)
	assert.Nil(t, refreshed.ParentID, "children are promoted to top level")
}

func TestGetCategoryBlogs_PublishedOnly(t *testing.T) {
	s, app, _ := newTestServer(t)

	category := createTestCategory(t, s.db, "tech")
	createTestBlog(t, s.db, category.ID, "visible", models.BlogPublished)
	createTestBlog(t, s.db, category.ID, "hidden", models.BlogDraft)

	resp, env := doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/categories/%d/blogs", category.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Count   int64         `json:"count"`
		Results []models.Blog `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, int64(1), data.Count)
	assert.Equal(t, models.BlogPublished, data.Results[0].Status)
}
