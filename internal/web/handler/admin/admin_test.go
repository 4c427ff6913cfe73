package admin

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authz "github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/config"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	codec *authz.TokenCodec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	err = db.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.Internship{},
		&models.GovernmentJob{},
		&models.Application{},
		&models.Setting{},
	)
	require.NoError(t, err, "failed to migrate models")

	cfg := &config.Config{
		Webserver: config.Webserver{URL: "http://localhost", Port: 3000},
		Auth:      config.Auth{TokenSecret: "test-secret", TokenTTL: time.Hour},
		Timeouts:  config.Timeouts{DB: 5 * time.Second},
	}

	app := fiber.New()

	codec := authz.NewTokenCodec(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	authService := authz.NewService(db, codec, cfg.Timeouts.DB)

	svc := Service{}
	svc.Init(app, cfg, db, authService)

	return &testEnv{app: app, db: db, codec: codec}
}

func (e *testEnv) login(t *testing.T, user *models.User) string {
	t.Helper()

	require.NoError(t, e.db.Create(user).Error)

	token, err := e.codec.Sign(user)
	require.NoError(t, err)

	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
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

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	return out
}

func superAdmin() *models.User {
	return &models.User{
		Email: "root@example.com", Name: "Root",
		Role: models.RoleAdministrator, AdminSubRole: models.SubRoleSuperAdmin,
	}
}

func userManager() *models.User {
	return &models.User{
		Email: "um@example.com", Name: "User Manager",
		Role: models.RoleAdministrator, AdminSubRole: models.SubRoleTeamMember,
		Permissions: models.AdminPermissions{ManageUsers: true},
	}
}

func TestListUsersGate(t *testing.T) {
	env := newTestEnv(t)

	seekerToken := env.login(t, &models.User{Email: "s@example.com", Name: "S", Role: models.RoleJobSeeker})
	resp := env.request(t, fiber.MethodGet, "/admin/users", seekerToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	managerToken := env.login(t, userManager())
	resp = env.request(t, fiber.MethodGet, "/admin/users", managerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["total"])
}

func TestUpdateUserAccessChangesAreSuperOnly(t *testing.T) {
	env := newTestEnv(t)

	target := &models.User{Email: "t@example.com", Name: "Target", Role: models.RoleJobSeeker}
	require.NoError(t, env.db.Create(target).Error)
	targetID := strconv.FormatUint(target.ID, 10)

	managerToken := env.login(t, userManager())
	superToken := env.login(t, superAdmin())

	// A team member may rename.
	resp := env.request(t, fiber.MethodPut, "/admin/users/"+targetID, managerToken,
		fiber.Map{"name": "Renamed"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// But may not change role or permissions, even holding manage-users.
	resp = env.request(t, fiber.MethodPut, "/admin/users/"+targetID, managerToken,
		fiber.Map{"role": "administrator"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.request(t, fiber.MethodPut, "/admin/users/"+targetID, managerToken,
		fiber.Map{"permissions": fiber.Map{"manageUsers": true}})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// A super-administrator may.
	resp = env.request(t, fiber.MethodPut, "/admin/users/"+targetID, superToken,
		fiber.Map{
			"role":         "administrator",
			"adminSubRole": "team-member",
			"permissions":  fiber.Map{"manageJobs": true},
		})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "administrator", body["role"])

	// Demoting back to job-seeker clears sub-role and flags.
	resp = env.request(t, fiber.MethodPut, "/admin/users/"+targetID, superToken,
		fiber.Map{"role": "job-seeker"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, target.ID).Error)
	assert.Empty(t, reloaded.AdminSubRole)
	assert.Equal(t, models.AdminPermissions{}, reloaded.Permissions)
}

func TestDeleteUserRules(t *testing.T) {
	env := newTestEnv(t)

	managerToken := env.login(t, userManager())
	superToken := env.login(t, superAdmin())

	seeker := &models.User{Email: "s@example.com", Name: "S", Role: models.RoleJobSeeker}
	require.NoError(t, env.db.Create(seeker).Error)

	otherAdmin := &models.User{
		Email: "admin2@example.com", Name: "A2",
		Role: models.RoleAdministrator, AdminSubRole: models.SubRoleTeamMember,
	}
	require.NoError(t, env.db.Create(otherAdmin).Error)

	// Self-deletion is blocked.
	resp := env.request(t, fiber.MethodDelete, "/admin/users/1", managerToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// A team member may not delete an administrator.
	resp = env.request(t, fiber.MethodDelete,
		"/admin/users/"+strconv.FormatUint(otherAdmin.ID, 10), managerToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// But may delete a regular account.
	resp = env.request(t, fiber.MethodDelete,
		"/admin/users/"+strconv.FormatUint(seeker.ID, 10), managerToken, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// A super-administrator may delete another administrator.
	resp = env.request(t, fiber.MethodDelete,
		"/admin/users/"+strconv.FormatUint(otherAdmin.ID, 10), superToken, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestAnalytics(t *testing.T) {
	env := newTestEnv(t)

	viewer := &models.User{
		Email: "viewer@example.com", Name: "Viewer",
		Role: models.RoleAdministrator, AdminSubRole: models.SubRoleTeamMember,
		Permissions: models.AdminPermissions{ViewAnalytics: true},
	}
	token := env.login(t, viewer)

	require.NoError(t, env.db.Create(&models.User{Email: "s@example.com", Name: "S", Role: models.RoleJobSeeker}).Error)
	require.NoError(t, env.db.Create(&models.Job{Title: "J", Company: "C", Type: models.EmploymentFullTime, PostedByID: 1, Open: true}).Error)
	require.NoError(t, env.db.Create(&models.Application{ApplicantID: 2, TargetKind: models.TargetJob, TargetID: 1}).Error)

	resp := env.request(t, fiber.MethodGet, "/admin/analytics", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	users, _ := body["users"].(map[string]any)
	require.NotNil(t, users)

	assert.Equal(t, float64(1), users["jobSeekers"])
	assert.Equal(t, float64(1), users["administrators"])
	assert.Equal(t, float64(1), body["jobs"])
	assert.Equal(t, float64(1), body["applications"])
	assert.Equal(t, float64(0), body["internships"])
}

func TestSettingsRoundtrip(t *testing.T) {
	env := newTestEnv(t)

	operator := &models.User{
		Email: "ops@example.com", Name: "Ops",
		Role: models.RoleAdministrator, AdminSubRole: models.SubRoleTeamMember,
		Permissions: models.AdminPermissions{ManageSettings: true},
	}
	token := env.login(t, operator)

	resp := env.request(t, fiber.MethodPut, "/admin/settings/banner", token,
		fiber.Map{"value": "maintenance at noon"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.request(t, fiber.MethodGet, "/admin/settings/banner", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "maintenance at noon", decodeBody(t, resp)["value"])

	resp = env.request(t, fiber.MethodDelete, "/admin/settings/banner", token, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = env.request(t, fiber.MethodGet, "/admin/settings/banner", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
