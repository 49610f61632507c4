package apiv1

import (
	"jml-lite/controllers"
	"jml-lite/fiberlog"
	"jml-lite/lib/notification/inapp"
	"jml-lite/lib/notification/push"
	"jml-lite/middleware"
	inappapimodels "jml-lite/models/api/inapp"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

type notificationApiController struct {
	controllers.BaseAPIController
}

func InitNotificationApiRouters(app *fiber.App) {
	controller := notificationApiController{}
	app.Route("notifications", func(router fiber.Router) {
		router.Get("", controller.list)
		router.Post("read", controller.markRead)
		router.Use("ws", func(ctx *fiber.Ctx) error {
			if !websocket.IsWebSocketUpgrade(ctx) {
				return fiber.ErrUpgradeRequired
			}
			return ctx.Next()
		})
		router.Get("ws", websocket.New(controller.stream))
	})
}

func (c *notificationApiController) list(ctx *fiber.Ctx) error {
	user := middleware.GetUser(ctx)
	list, err := inapp.Instance.List(user.ID, ctx.QueryBool("unread"))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения уведомлений")
	}
	return controllers.SendList(ctx, list)
}

func (c *notificationApiController) markRead(ctx *fiber.Ctx) error {
	var payload inappapimodels.MarkReadRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	user := middleware.GetUser(ctx)
	if err := inapp.Instance.MarkRead(user.ID, payload.IDs); err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка обновления уведомлений")
	}
	return c.SendOK(ctx, nil)
}

// stream при подключении отдаёт непрочитанные, дальше новые уведомления приходят из push-хаба
func (c *notificationApiController) stream(conn *websocket.Conn) {
	userID, _ := conn.Locals(fiberlog.TagUserID).(uint)
	logger := log.WithField("user_id", userID)
	if userID == 0 {
		return
	}
	remove := push.Instance.AddClient(userID, conn)
	defer remove()

	unread, err := inapp.Instance.List(userID, true)
	if err != nil {
		logger.WithError(err).Error("ошибка получения непрочитанных уведомлений")
	}
	for _, item := range unread {
		push.Instance.Send(userID, item)
	}

	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WithError(err).Warn("соединение уведомлений прервано")
			}
			return
		}
	}
}
