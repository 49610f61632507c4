package apiv1

import (
	"jml-lite/controllers"
	audittrail "jml-lite/lib/audit-trail"
	auditapimodels "jml-lite/models/api/audit"

	"github.com/gofiber/fiber/v2"
)

type auditApiController struct {
	controllers.BaseAPIController
}

func InitAuditApiRouters(app *fiber.App) {
	controller := auditApiController{}
	app.Get("audit", controller.list)
}

// list фильтр entity_type, entity_id, action, limit в строке запроса
func (c *auditApiController) list(ctx *fiber.Ctx) error {
	var filter auditapimodels.AuditFilter
	if err := ctx.QueryParser(&filter); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, "некорректные параметры фильтра")
	}
	list, err := audittrail.Instance.List(filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения журнала")
	}
	return controllers.SendList(ctx, list)
}
