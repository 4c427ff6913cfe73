package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	settingctl "github.com/CareerDesk/CareerDesk/internal/db/controller/setting"
	"github.com/CareerDesk/CareerDesk/internal/web/handler"
)

// settingView renders the stored blob as a string for the JSON response.
type settingView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ListSettings returns all settings.
func (s *Service) ListSettings(c *fiber.Ctx) error {
	db, cancel := s.dbCtx(c)
	defer cancel()

	settings, err := settingctl.GetAll(db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list settings")
		return handler.Fail(c, err)
	}

	views := make([]settingView, 0, len(settings))
	for _, setting := range settings {
		views = append(views, settingView{Name: setting.Name, Value: string(setting.Value)})
	}

	return c.JSON(views)
}

// GetSetting returns one setting by name.
func (s *Service) GetSetting(c *fiber.Ctx) error {
	db, cancel := s.dbCtx(c)
	defer cancel()

	setting, err := settingctl.Get(db, c.Params("name"))
	if err != nil {
		switch {
		case errors.Is(err, settingctl.ErrSettingNotFound):
			return handler.NotFound(c)
		case errors.Is(err, settingctl.ErrSettingNameEmpty):
			return handler.Validation(c, err.Error())
		default:
			log.Error().Err(err).Msg("failed to load setting")
			return handler.Fail(c, err)
		}
	}

	return c.JSON(settingView{Name: setting.Name, Value: string(setting.Value)})
}

// SetSetting creates or updates a setting.
func (s *Service) SetSetting(c *fiber.Ctx) error {
	var in struct {
		Value string `json:"value"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.Validation(c, "invalid request body")
	}

	db, cancel := s.dbCtx(c)
	defer cancel()

	setting, err := settingctl.Set(db, c.Params("name"), []byte(in.Value))
	if err != nil {
		if errors.Is(err, settingctl.ErrSettingNameEmpty) {
			return handler.Validation(c, err.Error())
		}

		log.Error().Err(err).Msg("failed to store setting")

		return handler.Fail(c, err)
	}

	return c.JSON(settingView{Name: setting.Name, Value: string(setting.Value)})
}

// DeleteSetting removes a setting by name.
func (s *Service) DeleteSetting(c *fiber.Ctx) error {
	db, cancel := s.dbCtx(c)
	defer cancel()

	if err := settingctl.Delete(db, c.Params("name")); err != nil {
		switch {
		case errors.Is(err, settingctl.ErrSettingNotFound):
			return handler.NotFound(c)
		case errors.Is(err, settingctl.ErrSettingNameEmpty):
			return handler.Validation(c, err.Error())
		default:
			log.Error().Err(err).Msg("failed to delete setting")
			return handler.Fail(c, err)
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}
