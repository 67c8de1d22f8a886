package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"myblog/internal/auth"
	"myblog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_FullFlow(t *testing.T) {
	s, app, _ := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, s.codeStore.SetEmailCode(ctx, "new@example.com", "123456"))

	resp, env := doRequest(t, app, http.MethodPost, "/api/register", fiber.Map{
		"email":     "new@example.com",
		"code":      "123456",
		"name":      "newbie",
		"telephone": "13812345678",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, "message: %s", env.Message)

	var user models.User
	require.NoError(t, s.db.Where("email = ?", "new@example.com").First(&user).Error)
	assert.False(t, user.IsActive, "accounts start inactive")
	assert.Empty(t, user.Password, "no password until activation")
	assert.Equal(t, models.DefaultAvatar, user.Avatar)
}

func TestRegister_WrongCode(t *testing.T) {
	s, app, _ := newTestServer(t)

	require.NoError(t, s.codeStore.SetEmailCode(context.Background(), "new@example.com", "123456"))

	resp, env := doRequest(t, app, http.MethodPost, "/api/register", fiber.Map{
		"email":     "new@example.com",
		"code":      "999999",
		"name":      "newbie",
		"telephone": "13812345678",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "code")
}

func TestRegister_DuplicateEmailAndTelephone(t *testing.T) {
	s, app, _ := newTestServer(t)
	ctx := context.Background()

	createTestUser(t, s.db, "taken@example.com", "13811111111", false)

	require.NoError(t, s.codeStore.SetEmailCode(ctx, "taken@example.com", "123456"))
	resp, env := doRequest(t, app, http.MethodPost, "/api/register", fiber.Map{
		"email":     "taken@example.com",
		"code":      "123456",
		"name":      "newbie",
		"telephone": "13812345678",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "Email")

	require.NoError(t, s.codeStore.SetEmailCode(ctx, "other@example.com", "123456"))
	resp, env = doRequest(t, app, http.MethodPost, "/api/register", fiber.Map{
		"email":     "other@example.com",
		"code":      "123456",
		"name":      "newbie",
		"telephone": "13811111111",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "Telephone")
}

func TestAgreeUser_RequiresSuperuser(t *testing.T) {
	s, app, _ := newTestServer(t)

	user := createTestUser(t, s.db, "user@example.com", "13800000001", false)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/agreeuser",
		fiber.Map{"email": "whoever@example.com"}, tokenFor(t, s, user.ID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestActivation_FullFlow(t *testing.T) {
	s, app, _ := newTestServer(t)
	admin := createTestUser(t, s.db, "admin@example.com", "13800000009", true)

	pending := &models.User{
		Email:     "pending@example.com",
		Name:      "pending",
		Telephone: "13812345678",
		Avatar:    models.DefaultAvatar,
	}
	require.NoError(t, s.db.Create(pending).Error)

	resp, env := doRequest(t, app, http.MethodPost, "/api/agreeuser",
		fiber.Map{"email": "pending@example.com"}, tokenFor(t, s, admin.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode, "message: %s", env.Message)

	// The emailed link embeds base64(email+code); rebuild it from the
	// stored code.
	code, err := s.redis.Get(context.Background(), "active_pending@example.com").Result()
	require.NoError(t, err)
	activeKey := auth.EncodeActivationKey("pending@example.com", code)

	resp, env = doRequest(t, app, http.MethodPost, "/api/activeuser", fiber.Map{
		"activekey":        activeKey,
		"password":         "secret1",
		"confirm_password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, "message: %s", env.Message)

	var activated models.User
	require.NoError(t, s.db.Where("email = ?", "pending@example.com").First(&activated).Error)
	assert.True(t, activated.IsActive)
	assert.NotEmpty(t, activated.Password)

	// The account can log in now.
	resp, env = doRequest(t, app, http.MethodPost, "/api/login", fiber.Map{
		"email":    "pending@example.com",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, "message: %s", env.Message)

	var data struct {
		Token string            `json:"token"`
		User  models.PublicUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "pending@example.com", data.User.Email)
}

func TestActiveUser_ExpiredCode(t *testing.T) {
	s, app, mr := newTestServer(t)
	ctx := context.Background()

	pending := &models.User{Email: "pending@example.com", Name: "pending", Telephone: "13812345678"}
	require.NoError(t, s.db.Create(pending).Error)

	require.NoError(t, s.codeStore.SetActivationCode(ctx, "pending@example.com", "654321"))
	mr.FastForward(30*time.Minute + time.Second)

	resp, env := doRequest(t, app, http.MethodPost, "/api/activeuser", fiber.Map{
		"activekey":        auth.EncodeActivationKey("pending@example.com", "654321"),
		"password":         "secret1",
		"confirm_password": "secret1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "expired")

	var user models.User
	require.NoError(t, s.db.Where("email = ?", "pending@example.com").First(&user).Error)
	assert.False(t, user.IsActive)
}

func TestActiveUser_CodeMismatch(t *testing.T) {
	s, app, _ := newTestServer(t)

	pending := &models.User{Email: "pending@example.com", Name: "pending", Telephone: "13812345678"}
	require.NoError(t, s.db.Create(pending).Error)
	require.NoError(t, s.codeStore.SetActivationCode(context.Background(), "pending@example.com", "654321"))

	resp, _ := doRequest(t, app, http.MethodPost, "/api/activeuser", fiber.Map{
		"activekey":        auth.EncodeActivationKey("pending@example.com", "111111"),
		"password":         "secret1",
		"confirm_password": "secret1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestActiveUser_AlreadyActive(t *testing.T) {
	s, app, _ := newTestServer(t)

	createTestUser(t, s.db, "active@example.com", "13812345678", false)
	require.NoError(t, s.codeStore.SetActivationCode(context.Background(), "active@example.com", "654321"))

	resp, env := doRequest(t, app, http.MethodPost, "/api/activeuser", fiber.Map{
		"activekey":        auth.EncodeActivationKey("active@example.com", "654321"),
		"password":         "secret1",
		"confirm_password": "secret1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "already active")
}

func TestActiveUser_PasswordMismatch(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp, env := doRequest(t, app, http.MethodPost, "/api/activeuser", fiber.Map{
		"activekey":        "whatever",
		"password":         "secret1",
		"confirm_password": "secret2",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "match")
}

func TestLogin_Failures(t *testing.T) {
	s, app, _ := newTestServer(t)

	user := createTestUser(t, s.db, "user@example.com", "13800000001", false)

	// Unknown email.
	resp, env := doRequest(t, app, http.MethodPost, "/api/login", fiber.Map{
		"email": "nobody@example.com", "password": "secret1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "does not exist")

	// Wrong password.
	resp, env = doRequest(t, app, http.MethodPost, "/api/login", fiber.Map{
		"email": "user@example.com", "password": "wrong-1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "password")

	// Inactive account.
	require.NoError(t, s.db.Model(user).Update("is_active", false).Error)
	resp, env = doRequest(t, app, http.MethodPost, "/api/login", fiber.Map{
		"email": "user@example.com", "password": "secret1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "not active")
}

func TestLogin_UpdatesLastLogin(t *testing.T) {
	s, app, _ := newTestServer(t)

	user := createTestUser(t, s.db, "user@example.com", "13800000001", false)
	require.Nil(t, user.LastLogin)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/login", fiber.Map{
		"email": "user@example.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var refreshed models.User
	require.NoError(t, s.db.First(&refreshed, user.ID).Error)
	assert.NotNil(t, refreshed.LastLogin)
}

func TestResetPassword(t *testing.T) {
	s, app, _ := newTestServer(t)

	user := createTestUser(t, s.db, "user@example.com", "13800000001", false)
	token := tokenFor(t, s, user.ID)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/resetpassword", fiber.Map{
		"password": "brand-new-pw", "confirm_password": "brand-new-pw",
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Old password no longer works; new one does.
	resp, _ = doRequest(t, app, http.MethodPost, "/api/login", fiber.Map{
		"email": "user@example.com", "password": "secret1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPost, "/api/login", fiber.Map{
		"email": "user@example.com", "password": "brand-new-pw",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInitCode_StoresCode(t *testing.T) {
	s, app, _ := newTestServer(t)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/initcode",
		fiber.Map{"email": "new@example.com"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	code, err := s.redis.Get(context.Background(), "email_code:new@example.com").Result()
	require.NoError(t, err)
	assert.Len(t, code, 6)
}
