package apiv1

import (
	"time"

	"jml-lite/controllers"
	jmltask "jml-lite/lib/jml-task"
	taskreminder "jml-lite/lib/task-reminder"
	"jml-lite/lib/workflow"
	"jml-lite/models"
	taskapimodels "jml-lite/models/api/task"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type taskApiController struct {
	controllers.BaseAPIController
}

func InitTaskApiRouters(app *fiber.App) {
	controller := taskApiController{}
	app.Route("tasks", func(router fiber.Router) {
		router.Get("overdue", controller.overdue)
		router.Get("due_today", controller.dueToday)
		router.Get("range", controller.inRange)
		router.Get("stats", controller.stats)
		router.Route(":kind/:id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Post("assign", controller.assign)
			idRoute.Post("status", controller.updateStatus)
		})
	})
}

func (c *taskApiController) get(ctx *fiber.Ctx) error {
	kind, id, err := c.GetKindAndID(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	result, err := jmltask.Instance.GetTask(kind, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения задачи")
	}
	if result == nil {
		return c.SendFail(ctx, fiber.StatusNotFound, "задача не найдена")
	}
	return c.SendOK(ctx, result)
}

func (c *taskApiController) assign(ctx *fiber.Ctx) error {
	kind, id, err := c.GetKindAndID(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	var payload taskapimodels.TaskAssignment
	if err = c.BodyParser(ctx, &payload); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	payload.ProcessType = kind
	payload.TaskID = id
	if err = payload.Validate(); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if !workflow.Instance.AssignTask(ctx.UserContext(), payload) {
		return c.SendFail(ctx, fiber.StatusConflict, "не удалось назначить исполнителя")
	}
	return c.SendOK(ctx, nil)
}

func (c *taskApiController) updateStatus(ctx *fiber.Ctx) error {
	kind, id, err := c.GetKindAndID(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	var payload taskapimodels.StatusUpdate
	if err = c.BodyParser(ctx, &payload); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if err = payload.Validate(); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	result, err := jmltask.Instance.UpdateStatus(ctx.UserContext(), kind, id, payload.Status)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка обновления статуса задачи")
	}
	if result == nil {
		return c.SendFail(ctx, fiber.StatusNotFound, "задача не найдена")
	}
	if payload.Status == models.TaskCompleted {
		workflow.Instance.OnTaskCompleted(ctx.UserContext(), taskapimodels.TaskCompletion{
			ProcessType:   kind,
			TaskID:        id,
			NotifyUserIDs: payload.NotifyUserIDs,
		})
	}
	return c.SendOK(ctx, result)
}

func (c *taskApiController) overdue(ctx *fiber.Ctx) error {
	return controllers.SendList(ctx, taskreminder.Instance.GetOverdueTasks(ctx.UserContext()))
}

func (c *taskApiController) dueToday(ctx *fiber.Ctx) error {
	return controllers.SendList(ctx, taskreminder.Instance.GetTasksDueToday(ctx.UserContext()))
}

// inRange период задаётся датами start и end (2006-01-02 или RFC3339), end не включается
func (c *taskApiController) inRange(ctx *fiber.Ctx) error {
	period, err := parseDateRange(ctx.Query("start"), ctx.Query("end"))
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	return controllers.SendList(ctx, taskreminder.Instance.GetTasksInDateRange(ctx.UserContext(), period.Start, period.End))
}

func (c *taskApiController) stats(ctx *fiber.Ctx) error {
	return c.SendOK(ctx, taskreminder.Instance.GetTaskStats(ctx.UserContext()))
}

func parseDateRange(start, end string) (taskapimodels.DateRange, error) {
	var period taskapimodels.DateRange
	var err error
	if period.Start, err = parseDate(start); err != nil {
		return period, errors.Wrap(err, "start")
	}
	if period.End, err = parseDate(end); err != nil {
		return period, errors.Wrap(err, "end")
	}
	return period, period.Validate()
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("значение не указано")
	}
	if result, err := time.Parse(time.DateOnly, value); err == nil {
		return result, nil
	}
	result, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.New("некорректная дата")
	}
	return result, nil
}
