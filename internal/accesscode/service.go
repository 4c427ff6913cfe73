// Package accesscode implements the admin access-code lifecycle: issue,
// validate, consume, deactivate, retire. A code admits administrator
// registration while it is active, under its usage limit, and not expired.
package accesscode

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/auth"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/uniuri"
)

// Service provides access-code operations.
type Service struct {
	db        *gorm.DB
	dbTimeout time.Duration
}

// NewService creates a new access-code service.
func NewService(db *gorm.DB, dbTimeout time.Duration) *Service {
	return &Service{db: db, dbTimeout: dbTimeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.dbTimeout)
}

// IssueInput carries the parameters for issuing a new code. Zero values fall
// back to defaults: a generated code string, usage limit 1, team-member
// target, and the default permission bundle.
type IssueInput struct {
	Code          string
	Description   string
	ExpiresAt     time.Time
	UsageLimit    uint
	TargetSubRole models.AdminSubRole
	Grants        *models.AdminPermissions
}

// Issue creates a new access code. The issuer must hold manage-access-codes;
// a code targeting the super-administrator sub-role may only be issued by a
// super-administrator. A past expiry is accepted: the code is simply born
// expired and Validate reports it as such.
func (s *Service) Issue(ctx context.Context, issuer *models.User, in IssueInput) (*models.AccessCode, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	if !auth.Capability(issuer, models.PermManageAccessCodes) {
		return nil, ErrForbidden
	}

	if in.TargetSubRole == "" {
		in.TargetSubRole = models.SubRoleTeamMember
	}

	if in.TargetSubRole == models.SubRoleSuperAdmin && !issuer.IsSuperAdmin() {
		return nil, ErrForbidden
	}

	if in.Code == "" {
		in.Code = uniuri.NewLen(uniuri.CodeLen)
	}

	if in.UsageLimit == 0 {
		in.UsageLimit = 1
	}

	grants := models.DefaultAdminPermissions()
	if in.Grants != nil {
		grants = *in.Grants
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// Pre-check for a duplicate code string; the unique index backs this up
	// against races.
	var existing models.AccessCode

	result := s.db.WithContext(ctx).Where("code = ?", in.Code).First(&existing)
	if result.Error == nil {
		return nil, ErrCodeExists
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	code := &models.AccessCode{
		Code:          in.Code,
		Description:   in.Description,
		IssuedByID:    issuer.ID,
		Active:        true,
		TargetSubRole: in.TargetSubRole,
		Grants:        grants,
		UsageLimit:    in.UsageLimit,
		UsageCount:    0,
		ExpiresAt:     in.ExpiresAt,
	}

	if err := s.db.WithContext(ctx).Create(code).Error; err != nil {
		if duplicateKey(err) {
			// Lost a race past the pre-check; the unique index caught it.
			return nil, ErrCodeExists
		}

		return nil, err
	}

	return code, nil
}

// duplicateKey reports whether an insert was rejected by a unique index.
// Covers gorm's translated sentinel plus the raw MySQL and SQLite messages
// for connections opened without error translation.
func duplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()

	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// Validate is the read-only probe of the validity predicate. It never
// mutates the usage counter, so a registrant can check a code before
// committing to registration. Returns the code's lifecycle state alongside
// the verdict.
func (s *Service) Validate(ctx context.Context, codeString string) (bool, models.AccessCodeState, error) {
	if s.db == nil {
		return false, "", ErrDBNil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var code models.AccessCode

	result := s.db.WithContext(ctx).Where("code = ?", codeString).First(&code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, "", ErrCodeNotFound
		}

		return false, "", result.Error
	}

	state := code.State(time.Now())

	return state == models.AccessCodeUsable, state, nil
}

// Consume spends one use of the code. The validity predicate is re-checked
// inside a single conditional UPDATE with an atomic increment, which closes
// the race between Validate and Consume: with a usage limit of N, at most N
// concurrent consumers succeed and the rest observe ErrInvalidCode.
func (s *Service) Consume(ctx context.Context, codeString string) error {
	if s.db == nil {
		return ErrDBNil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return ConsumeWithin(s.db.WithContext(ctx), codeString)
}

// ConsumeWithin spends one use of the code on the given handle, which may be
// an open transaction. See Consume for the predicate semantics.
func ConsumeWithin(tx *gorm.DB, codeString string) error {
	result := tx.Model(&models.AccessCode{}).
		Where("code = ? AND active = ? AND usage_count < usage_limit AND expires_at > ?",
			codeString, true, time.Now()).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrInvalidCode
	}

	return nil
}

// Lookup loads a code by its string without an authorization gate. It exists
// for the administrator registration path, where the caller is by definition
// not yet an identity.
func (s *Service) Lookup(ctx context.Context, codeString string) (*models.AccessCode, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var code models.AccessCode

	result := s.db.WithContext(ctx).Where("code = ?", codeString).First(&code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}

		return nil, result.Error
	}

	return &code, nil
}

// Deactivate clears the active flag, permanently removing the code from use.
// Any identity holding manage-access-codes may deactivate.
func (s *Service) Deactivate(ctx context.Context, actor *models.User, id uint64) error {
	if s.db == nil {
		return ErrDBNil
	}

	if !auth.Capability(actor, models.PermManageAccessCodes) {
		return ErrForbidden
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := s.db.WithContext(ctx).Model(&models.AccessCode{}).
		Where("id = ?", id).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCodeNotFound
	}

	return nil
}

// Retire hard-deletes a code record. Only a super-administrator may do this;
// this power is not expressible through the permission flags.
func (s *Service) Retire(ctx context.Context, actor *models.User, id uint64) error {
	if s.db == nil {
		return ErrDBNil
	}

	if actor == nil || !actor.IsSuperAdmin() {
		return ErrForbidden
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := s.db.WithContext(ctx).Delete(&models.AccessCode{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCodeNotFound
	}

	return nil
}

// Get loads a code by id for identities holding manage-access-codes.
func (s *Service) Get(ctx context.Context, actor *models.User, id uint64) (*models.AccessCode, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	if !auth.Capability(actor, models.PermManageAccessCodes) {
		return nil, ErrForbidden
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var code models.AccessCode

	result := s.db.WithContext(ctx).First(&code, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}

		return nil, result.Error
	}

	return &code, nil
}

// List returns all codes, newest first, for identities holding
// manage-access-codes.
func (s *Service) List(ctx context.Context, actor *models.User) ([]models.AccessCode, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	if !auth.Capability(actor, models.PermManageAccessCodes) {
		return nil, ErrForbidden
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var codes []models.AccessCode

	result := s.db.WithContext(ctx).Order("id DESC").Find(&codes)
	if result.Error != nil {
		return nil, result.Error
	}

	return codes, nil
}
