package setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestGet(t *testing.T) {
	testCases := []struct {
		name          string
		nilDB         bool
		settingName   string
		seed          []models.Setting
		expectedError error
		expectedValue []byte
	}{
		{
			name:          "nil database",
			nilDB:         true,
			settingName:   "test",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:        "successful get",
			settingName: "site_name",
			seed: []models.Setting{
				{Name: "site_name", Value: []byte("CareerDesk")},
			},
			expectedValue: []byte("CareerDesk"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var db *gorm.DB
			if !tc.nilDB {
				db = setupTestDB(t)
				for _, s := range tc.seed {
					require.NoError(t, db.Create(&s).Error)
				}
			}

			setting, err := Get(db, tc.settingName)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedValue, setting.Value)
		})
	}
}

func TestGetAll(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetAll(nil)
	assert.ErrorIs(t, err, ErrDBNil)

	settings, err := GetAll(db)
	require.NoError(t, err)
	assert.Empty(t, settings)

	require.NoError(t, db.Create(&models.Setting{Name: "a", Value: []byte("1")}).Error)
	require.NoError(t, db.Create(&models.Setting{Name: "b", Value: []byte("2")}).Error)

	settings, err = GetAll(db)
	require.NoError(t, err)
	assert.Len(t, settings, 2)
}

func TestSet(t *testing.T) {
	db := setupTestDB(t)

	_, err := Set(nil, "a", []byte("1"))
	assert.ErrorIs(t, err, ErrDBNil)

	_, err = Set(db, "", []byte("1"))
	assert.ErrorIs(t, err, ErrSettingNameEmpty)

	created, err := Set(db, "banner", []byte("welcome"))
	require.NoError(t, err)
	assert.Equal(t, []byte("welcome"), created.Value)

	updated, err := Set(db, "banner", []byte("changed"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID, "update must not create a second row")
	assert.Equal(t, []byte("changed"), updated.Value)

	var count int64
	require.NoError(t, db.Model(&models.Setting{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)

	assert.ErrorIs(t, Delete(nil, "a"), ErrDBNil)
	assert.ErrorIs(t, Delete(db, ""), ErrSettingNameEmpty)
	assert.ErrorIs(t, Delete(db, "missing"), ErrSettingNotFound)

	require.NoError(t, db.Create(&models.Setting{Name: "temp", Value: []byte("x")}).Error)
	require.NoError(t, Delete(db, "temp"))
	assert.ErrorIs(t, Delete(db, "temp"), ErrSettingNotFound)
}
