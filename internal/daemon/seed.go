package daemon

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/config"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/uniuri"
)

// seed creates the first super-administrator and a bootstrap access code when
// the user table is empty, so a fresh install can be administered at all.
func seed(_ *config.Config, db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Count(&count)

	if count != 0 {
		return
	}

	admin := &models.User{
		Email:        "admin@careerdesk.local",
		Password:     models.HashPassword("changeme"),
		Name:         "Administrator",
		Role:         models.RoleAdministrator,
		AdminSubRole: models.SubRoleSuperAdmin,
	}

	if err := db.Create(admin).Error; err != nil {
		log.Error().Err(err).Msg("failed to seed super-administrator")
		return
	}

	log.Warn().Str("email", admin.Email).
		Msg("seeded initial super-administrator with default password, change it")

	code := &models.AccessCode{
		Code:          uniuri.NewLen(uniuri.CodeLen),
		Description:   "bootstrap code for the first team member",
		IssuedByID:    admin.ID,
		Active:        true,
		TargetSubRole: models.SubRoleTeamMember,
		Grants:        models.DefaultAdminPermissions(),
		UsageLimit:    1,
		ExpiresAt:     time.Now().Add(7 * 24 * time.Hour),
	}

	if err := db.Create(code).Error; err != nil {
		log.Error().Err(err).Msg("failed to seed bootstrap access code")
		return
	}

	log.Info().Str("code", code.Code).Msg("seeded bootstrap access code")
}
