package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/assets"
	authz "github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/config"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

// stubStore is an asset store that either succeeds with a fixed asset or
// fails every upload.
type stubStore struct {
	asset assets.Asset
	err   error
}

func (s *stubStore) Upload(_ context.Context, _ []byte, _, _ string) (assets.Asset, error) {
	if s.err != nil {
		return assets.Asset{}, s.err
	}

	return s.asset, nil
}

func (s *stubStore) Delete(context.Context, string) error { return nil }

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	codec *authz.TokenCodec
}

func newTestEnv(t *testing.T, store assets.Store) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err, "failed to migrate models")

	cfg := &config.Config{
		Webserver: config.Webserver{URL: "http://localhost", Port: 3000},
		Auth:      config.Auth{TokenSecret: "test-secret", TokenTTL: time.Hour},
		Timeouts:  config.Timeouts{DB: 5 * time.Second, Collaborator: 5 * time.Second},
	}

	app := fiber.New()

	codec := authz.NewTokenCodec(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	authService := authz.NewService(db, codec, cfg.Timeouts.DB)

	svc := Service{}
	svc.Init(app, cfg, db, authService, store)

	return &testEnv{app: app, db: db, codec: codec}
}

func (e *testEnv) login(t *testing.T, user *models.User) string {
	t.Helper()

	require.NoError(t, e.db.Create(user).Error)

	token, err := e.codec.Sign(user)
	require.NoError(t, err)

	return token
}

func (e *testEnv) requestJSON(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

// upload posts a multipart request with a small file in the "file" field.
func (e *testEnv) upload(t *testing.T, path, token string) *http.Response {
	t.Helper()

	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "upload.png")
	require.NoError(t, err)

	_, err = part.Write([]byte("not-really-a-png"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(fiber.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	return out
}

func seeker() *models.User {
	return &models.User{Email: "ada@example.com", Name: "Ada", Role: models.RoleJobSeeker}
}

func TestUploadWithoutStoreUsesPlaceholder(t *testing.T) {
	env := newTestEnv(t, nil)

	user := seeker()
	token := env.login(t, user)

	resp := env.upload(t, "/profile/avatar", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "upload must succeed without a store")
	assert.Equal(t, "/static/placeholder.png", decodeBody(t, resp)["url"])

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "/static/placeholder.png", reloaded.AvatarURL)
}

func TestUploadStoreFailureDegrades(t *testing.T) {
	env := newTestEnv(t, &stubStore{err: errors.New("bucket unreachable")})

	user := seeker()
	token := env.login(t, user)

	resp := env.upload(t, "/profile/avatar", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "store failure must not fail the request")
	assert.Equal(t, "/static/placeholder.png", decodeBody(t, resp)["url"])

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "/static/placeholder.png", reloaded.AvatarURL)
}

func TestUploadStoresReturnedURL(t *testing.T) {
	env := newTestEnv(t, &stubStore{
		asset: assets.Asset{Key: "resumes/abc", URL: "https://cdn.example.com/resumes/abc"},
	})

	token := env.login(t, seeker())

	resp := env.upload(t, "/profile/resume", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://cdn.example.com/resumes/abc", decodeBody(t, resp)["url"])

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, 1).Error)
	assert.Equal(t, "https://cdn.example.com/resumes/abc", reloaded.ResumeURL)
}

func TestUploadRoleGates(t *testing.T) {
	env := newTestEnv(t, nil)

	employerToken := env.login(t, &models.User{
		Email: "hr@example.com", Name: "HR", Role: models.RoleEmployer,
	})

	resp := env.upload(t, "/profile/resume", employerToken)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "resume upload is for job seekers")

	resp = env.upload(t, "/profile/company-logo", employerToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUploadMissingFileField(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.login(t, seeker())

	resp := env.requestJSON(t, fiber.MethodPost, "/profile/avatar", token, fiber.Map{"file": "nope"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t, nil)

	seekerToken := env.login(t, seeker())

	resp := env.requestJSON(t, fiber.MethodPut, "/profile", seekerToken, fiber.Map{
		"name":        "Ada L.",
		"headline":    "Backend developer",
		"bio":         "I write Go.",
		"skills":      []string{"go", "sql"},
		"companyName": "should be ignored",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, 1).Error)
	assert.Equal(t, "Ada L.", reloaded.Name)
	assert.Equal(t, "Backend developer", reloaded.Headline)
	assert.Equal(t, "go,sql", reloaded.Skills)
	assert.Empty(t, reloaded.CompanyName, "company name is employer-only")

	employerToken := env.login(t, &models.User{
		Email: "hr@example.com", Name: "HR", Role: models.RoleEmployer,
	})

	resp = env.requestJSON(t, fiber.MethodPut, "/profile", employerToken, fiber.Map{
		"name":        "HR Team",
		"companyName": "ACME",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	reloaded = models.User{}
	require.NoError(t, env.db.First(&reloaded, 2).Error)
	assert.Equal(t, "ACME", reloaded.CompanyName)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t, nil)

	user := seeker()
	user.Password = models.HashPassword("old-password")
	token := env.login(t, user)

	resp := env.requestJSON(t, fiber.MethodPut, "/profile/password", token, fiber.Map{
		"currentPassword": "wrong-password",
		"newPassword":     "brand-new-password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.requestJSON(t, fiber.MethodPut, "/profile/password", token, fiber.Map{
		"currentPassword": "old-password",
		"newPassword":     "brand-new-password",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.VerifyPassword("brand-new-password"))
	assert.False(t, reloaded.VerifyPassword("old-password"))
}
