package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Application{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestCreateRejectsDuplicate(t *testing.T) {
	db := setupTestDB(t)

	first := &models.Application{ApplicantID: 1, TargetKind: models.TargetJob, TargetID: 10}
	require.NoError(t, Create(db, first))
	assert.Equal(t, models.StatusSubmitted, firstStatus(t, db, first.ID))

	// Same applicant, same posting: refused.
	dup := &models.Application{ApplicantID: 1, TargetKind: models.TargetJob, TargetID: 10}
	assert.ErrorIs(t, Create(db, dup), ErrAlreadyApplied)

	// Same posting id in a different collection is a different posting.
	other := &models.Application{ApplicantID: 1, TargetKind: models.TargetInternship, TargetID: 10}
	assert.NoError(t, Create(db, other))

	// Different applicant on the same posting is fine.
	rival := &models.Application{ApplicantID: 2, TargetKind: models.TargetJob, TargetID: 10}
	assert.NoError(t, Create(db, rival))
}

func firstStatus(t *testing.T, db *gorm.DB, id uint64) models.ApplicationStatus {
	t.Helper()

	loaded, err := GetByID(db, id)
	require.NoError(t, err)

	return loaded.Status
}

func TestListByApplicantAndTarget(t *testing.T) {
	db := setupTestDB(t)

	seed := []models.Application{
		{ApplicantID: 1, TargetKind: models.TargetJob, TargetID: 10},
		{ApplicantID: 1, TargetKind: models.TargetJob, TargetID: 11},
		{ApplicantID: 2, TargetKind: models.TargetJob, TargetID: 10},
	}
	for i := range seed {
		require.NoError(t, Create(db, &seed[i]))
	}

	mine, err := ListByApplicant(db, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, uint64(11), mine[0].TargetID, "newest first")

	forPosting, err := ListByTarget(db, models.TargetJob, 10)
	require.NoError(t, err)
	require.Len(t, forPosting, 2)
	assert.Equal(t, uint64(1), forPosting[0].ApplicantID, "oldest first")
}

func TestUpdateStatus(t *testing.T) {
	db := setupTestDB(t)

	application := &models.Application{ApplicantID: 1, TargetKind: models.TargetJob, TargetID: 10}
	require.NoError(t, Create(db, application))

	require.NoError(t, UpdateStatus(db, application.ID, models.StatusShortlisted))
	assert.Equal(t, models.StatusShortlisted, firstStatus(t, db, application.ID))

	assert.ErrorIs(t, UpdateStatus(db, 9999, models.StatusRejected), ErrApplicationNotFound)
}

func TestDeleteByTarget(t *testing.T) {
	db := setupTestDB(t)

	seed := []models.Application{
		{ApplicantID: 1, TargetKind: models.TargetJob, TargetID: 10},
		{ApplicantID: 2, TargetKind: models.TargetJob, TargetID: 10},
		{ApplicantID: 1, TargetKind: models.TargetJob, TargetID: 11},
	}
	for i := range seed {
		require.NoError(t, Create(db, &seed[i]))
	}

	require.NoError(t, DeleteByTarget(db, models.TargetJob, 10))

	total, err := Count(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
