package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/accesscode"
	authz "github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/config"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/identity"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	err = db.AutoMigrate(&models.User{}, &models.AccessCode{}, &models.Notification{})
	require.NoError(t, err, "failed to migrate models")

	cfg := &config.Config{
		Webserver: config.Webserver{URL: "http://localhost", Port: 3000},
		Auth:      config.Auth{TokenSecret: "test-secret", TokenTTL: time.Hour},
		Timeouts:  config.Timeouts{DB: 5 * time.Second, Collaborator: 5 * time.Second},
	}

	app := fiber.New()

	codec := authz.NewTokenCodec(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	authService := authz.NewService(db, codec, cfg.Timeouts.DB)
	codes := accesscode.NewService(db, cfg.Timeouts.DB)
	identities := identity.NewService(db, codes, codec, nil, cfg.Timeouts.DB)

	svc := Service{}
	svc.Init(app, cfg, db, identities, authService)

	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
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

func TestRegister(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/auth/register", fiber.Map{
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"password": "password123",
		"role":     "job-seeker",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "ada@example.com", body["email"])
	assert.Equal(t, "job-seeker", body["role"])
	assert.NotContains(t, body, "password", "hash must never leave the server")
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newTestApp(t)

	testCases := []struct {
		name string
		body fiber.Map
	}{
		{
			name: "administrator role is not self-service",
			body: fiber.Map{"name": "Eve", "email": "eve@example.com", "password": "password123", "role": "administrator"},
		},
		{
			name: "short password",
			body: fiber.Map{"name": "Eve", "email": "eve@example.com", "password": "short", "role": "job-seeker"},
		},
		{
			name: "bad email",
			body: fiber.Map{"name": "Eve", "email": "not-an-email", "password": "password123", "role": "job-seeker"},
		},
		{
			name: "missing name",
			body: fiber.Map{"email": "eve@example.com", "password": "password123", "role": "job-seeker"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, app, "/auth/register", tc.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, _ := newTestApp(t)

	body := fiber.Map{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "password123",
		"role":     "employer",
	}

	resp := postJSON(t, app, "/auth/register", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/auth/register", body)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestRegisterAdmin(t *testing.T) {
	app, db := newTestApp(t)

	require.NoError(t, db.Create(&models.AccessCode{
		Code:          "ADMIT-1",
		Active:        true,
		TargetSubRole: models.SubRoleTeamMember,
		Grants:        models.AdminPermissions{ManageUsers: true},
		UsageLimit:    1,
		ExpiresAt:     time.Now().Add(time.Hour),
	}).Error)

	resp := postJSON(t, app, "/auth/register-admin", fiber.Map{
		"name":       "Grace",
		"email":      "grace@example.com",
		"password":   "password123",
		"accessCode": "ADMIT-1",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "administrator", body["role"])
	assert.Equal(t, "team-member", body["adminSubRole"])

	// The code is spent; the next registrant is refused with a 400.
	resp = postJSON(t, app, "/auth/register-admin", fiber.Map{
		"name":       "Second",
		"email":      "second@example.com",
		"password":   "password123",
		"accessCode": "ADMIT-1",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRegisterAdminUnknownCode(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/auth/register-admin", fiber.Map{
		"name":       "Grace",
		"email":      "grace@example.com",
		"password":   "password123",
		"accessCode": "NO-SUCH-CODE",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/auth/register", fiber.Map{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "password123",
		"role":     "job-seeker",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/auth/login", fiber.Map{
		"email":    "ADA@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
}

func TestLoginEnumerationResistance(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/auth/register", fiber.Map{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "password123",
		"role":     "job-seeker",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	wrongPass := postJSON(t, app, "/auth/login", fiber.Map{
		"email":    "ada@example.com",
		"password": "wrong-password",
	})
	unknown := postJSON(t, app, "/auth/login", fiber.Map{
		"email":    "nobody@example.com",
		"password": "password123",
	})

	assert.Equal(t, fiber.StatusUnauthorized, wrongPass.StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, unknown.StatusCode)

	// Identical bodies: the response must not reveal whether the account exists.
	assert.Equal(t, decodeBody(t, wrongPass), decodeBody(t, unknown))
}

func TestMe(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/auth/register", fiber.Map{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "password123",
		"role":     "job-seeker",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/auth/login", fiber.Map{
		"email":    "ada@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	token, _ := decodeBody(t, resp)["token"].(string)
	require.NotEmpty(t, token)

	req := httptest.NewRequest(fiber.MethodGet, "/auth/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	meResp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, meResp.StatusCode)

	body := decodeBody(t, meResp)
	assert.Equal(t, "ada@example.com", body["email"])
}

func TestMeWithoutToken(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/auth/me", nil)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(fiber.MethodGet, "/auth/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")

	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
