package apiv1

import (
	"jml-lite/controllers"
	"jml-lite/lib/notification/teams"
	settingsapimodels "jml-lite/models/api/settings"

	"github.com/gofiber/fiber/v2"
)

type settingsApiController struct {
	controllers.BaseAPIController
}

func InitSettingsApiRouters(app *fiber.App) {
	controller := settingsApiController{}
	app.Route("settings", func(router fiber.Router) {
		router.Get("teams_webhook", controller.getTeamsWebhook)
		router.Put("teams_webhook", controller.saveTeamsWebhook)
		router.Post("teams_webhook/test", controller.testTeamsWebhook)
	})
}

func (c *settingsApiController) getTeamsWebhook(ctx *fiber.Ctx) error {
	return c.SendOK(ctx, teams.Instance.GetWebhookConfig(ctx.UserContext()))
}

func (c *settingsApiController) saveTeamsWebhook(ctx *fiber.Ctx) error {
	var payload settingsapimodels.WebhookConfig
	if err := c.BodyParser(ctx, &payload); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if err := payload.Validate(); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if err := teams.Instance.SaveWebhookConfig(ctx.UserContext(), payload); err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка сохранения настроек Teams")
	}
	return c.SendOK(ctx, nil)
}

func (c *settingsApiController) testTeamsWebhook(ctx *fiber.Ctx) error {
	var payload settingsapimodels.WebhookTestRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if err := payload.Validate(); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	return c.SendOK(ctx, teams.Instance.TestWebhook(ctx.UserContext(), payload.URL))
}
