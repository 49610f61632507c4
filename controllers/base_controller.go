package controllers

import (
	"strconv"

	authutils "jml-lite/lib/utils/auth-utils"
	"jml-lite/models"
	apimodels "jml-lite/models/api"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type BaseAPIController struct{}

func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		log.WithError(err).Error("ошибка распознавания запроса")
		return errors.New("не удалось получить данные из запроса")
	}
	return nil
}

func (c *BaseAPIController) GetID(ctx *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("некорректный идентификатор записи")
	}
	return uint(id), nil
}

// GetKind тип процесса из пути, принимается "onboarding" и "Onboarding"
func (c *BaseAPIController) GetKind(ctx *fiber.Ctx) (models.ProcessType, error) {
	kind, ok := models.ParseProcessType(ctx.Params("kind"))
	if !ok {
		return "", errors.Errorf("неизвестный тип процесса: %v", ctx.Params("kind"))
	}
	return kind, nil
}

func (c *BaseAPIController) GetLogger(ctx *fiber.Ctx) *log.Entry {
	logger := log.
		WithField("method", ctx.Method()).
		WithField("path", ctx.Path())
	if user, ok := authutils.UserFromContext(ctx.UserContext()); ok {
		logger = logger.WithField("user_id", user.ID)
	}
	return logger
}

func (c *BaseAPIController) SendError(ctx *fiber.Ctx, logger *log.Entry, err error, msg string) error {
	logger.WithError(err).Error(msg)
	return ctx.Status(fiber.StatusInternalServerError).JSON(apimodels.NewError(msg))
}

func (c *BaseAPIController) SendFail(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(apimodels.NewError(msg))
}

func (c *BaseAPIController) SendOK(ctx *fiber.Ctx, data interface{}) error {
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(data))
}

// GetKindAndID тип процесса и идентификатор записи из пути
func (c *BaseAPIController) GetKindAndID(ctx *fiber.Ctx) (models.ProcessType, uint, error) {
	kind, err := c.GetKind(ctx)
	if err != nil {
		return "", 0, err
	}
	id, err := c.GetID(ctx)
	if err != nil {
		return "", 0, err
	}
	return kind, id, nil
}

func SendList[T any](ctx *fiber.Ctx, list []T) error {
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewListResponse(list))
}
