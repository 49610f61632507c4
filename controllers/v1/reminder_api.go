package apiv1

import (
	"jml-lite/controllers"
	taskreminder "jml-lite/lib/task-reminder"
	"jml-lite/lib/workflow"

	"github.com/gofiber/fiber/v2"
)

type reminderApiController struct {
	controllers.BaseAPIController
}

// InitReminderApiRouters ручной запуск рассылок, в обычном режиме их выполняет планировщик
func InitReminderApiRouters(app *fiber.App) {
	controller := reminderApiController{}
	app.Route("reminders", func(router fiber.Router) {
		router.Post("overdue", controller.overdueEmails)
		router.Post("teams/overdue", controller.teamsOverdue)
		router.Post("teams/due_today", controller.teamsDueToday)
	})
}

func (c *reminderApiController) overdueEmails(ctx *fiber.Ctx) error {
	return c.SendOK(ctx, fiber.Map{"sent": workflow.Instance.SendOverdueReminders(ctx.UserContext())})
}

func (c *reminderApiController) teamsOverdue(ctx *fiber.Ctx) error {
	return c.SendOK(ctx, taskreminder.Instance.SendOverdueReminders(ctx.UserContext()))
}

func (c *reminderApiController) teamsDueToday(ctx *fiber.Ctx) error {
	return c.SendOK(ctx, taskreminder.Instance.SendDueTodayReminders(ctx.UserContext()))
}
