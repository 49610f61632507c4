package apiv1

import (
	"jml-lite/controllers"
	jmlprocess "jml-lite/lib/jml-process"
	jmltask "jml-lite/lib/jml-task"
	processapimodels "jml-lite/models/api/process"

	"github.com/gofiber/fiber/v2"
)

type processApiController struct {
	controllers.BaseAPIController
}

func InitProcessApiRouters(app *fiber.App) {
	controller := processApiController{}
	app.Route("processes/:kind", func(router fiber.Router) {
		router.Post("", controller.submit)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Post("start", controller.start)
			idRoute.Post("complete", controller.complete)
			idRoute.Get("tasks", controller.tasks)
		})
	})
}

func (c *processApiController) submit(ctx *fiber.Ctx) error {
	kind, err := c.GetKind(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	var payload processapimodels.ProcessSubmission
	if err = c.BodyParser(ctx, &payload); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if err = payload.Validate(); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	result, err := jmlprocess.Instance.Submit(ctx.UserContext(), kind, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания процесса")
	}
	return c.SendOK(ctx, result)
}

func (c *processApiController) get(ctx *fiber.Ctx) error {
	kind, id, err := c.GetKindAndID(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	result, err := jmlprocess.Instance.Get(kind, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения процесса")
	}
	if result == nil {
		return c.SendFail(ctx, fiber.StatusNotFound, "процесс не найден")
	}
	return c.SendOK(ctx, result)
}

func (c *processApiController) start(ctx *fiber.Ctx) error {
	kind, id, err := c.GetKindAndID(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if err = jmlprocess.Instance.Start(ctx.UserContext(), kind, id); err != nil {
		return c.SendFail(ctx, fiber.StatusConflict, err.Error())
	}
	return c.SendOK(ctx, nil)
}

func (c *processApiController) complete(ctx *fiber.Ctx) error {
	kind, id, err := c.GetKindAndID(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if err = jmlprocess.Instance.Complete(ctx.UserContext(), kind, id); err != nil {
		return c.SendFail(ctx, fiber.StatusConflict, err.Error())
	}
	return c.SendOK(ctx, nil)
}

func (c *processApiController) tasks(ctx *fiber.Ctx) error {
	kind, id, err := c.GetKindAndID(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	list, err := jmltask.Instance.ListByProcess(kind, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения задач процесса")
	}
	return controllers.SendList(ctx, list)
}
