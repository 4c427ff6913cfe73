package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	applicationctl "github.com/CareerDesk/CareerDesk/internal/db/controller/application"
	govctl "github.com/CareerDesk/CareerDesk/internal/db/controller/governmentjob"
	internshipctl "github.com/CareerDesk/CareerDesk/internal/db/controller/internship"
	jobctl "github.com/CareerDesk/CareerDesk/internal/db/controller/job"
	userctl "github.com/CareerDesk/CareerDesk/internal/db/controller/user"
	"github.com/CareerDesk/CareerDesk/internal/db/models"
	"github.com/CareerDesk/CareerDesk/internal/web/handler"
)

// Analytics returns the platform snapshot: account counts per role and
// posting/application totals.
func (s *Service) Analytics(c *fiber.Ctx) error {
	db, cancel := s.dbCtx(c)
	defer cancel()

	roleCounts, err := userctl.CountByRole(db)
	if err != nil {
		log.Error().Err(err).Msg("failed to count users")
		return handler.Fail(c, err)
	}

	jobs, err := jobctl.Count(db)
	if err != nil {
		log.Error().Err(err).Msg("failed to count jobs")
		return handler.Fail(c, err)
	}

	internships, err := internshipctl.Count(db)
	if err != nil {
		log.Error().Err(err).Msg("failed to count internships")
		return handler.Fail(c, err)
	}

	governmentJobs, err := govctl.Count(db)
	if err != nil {
		log.Error().Err(err).Msg("failed to count government jobs")
		return handler.Fail(c, err)
	}

	applications, err := applicationctl.Count(db)
	if err != nil {
		log.Error().Err(err).Msg("failed to count applications")
		return handler.Fail(c, err)
	}

	return c.JSON(fiber.Map{
		"users": fiber.Map{
			"jobSeekers":     roleCounts[models.RoleJobSeeker],
			"employers":      roleCounts[models.RoleEmployer],
			"administrators": roleCounts[models.RoleAdministrator],
		},
		"jobs":           jobs,
		"internships":    internships,
		"governmentJobs": governmentJobs,
		"applications":   applications,
	})
}
