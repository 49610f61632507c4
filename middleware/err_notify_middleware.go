package middleware

import (
	"context"
	"encoding/json"
	"fmt"

	"jml-lite/lib/notification/teams"
	"jml-lite/models"
	notificationapimodels "jml-lite/models/api/notification"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// ErrNotify отправляет карточку в основной канал Teams, если запрос завершился ошибкой 5xx
func ErrNotify(sender teams.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		statusCode := c.Response().StatusCode()
		if statusCode < fiber.StatusInternalServerError || sender == nil {
			return err
		}

		var data struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if unmErr := json.Unmarshal(c.Response().Body(), &data); unmErr != nil {
			log.WithError(unmErr).Warn("не удалось разобрать ответ с ошибкой")
		}
		msg := data.Message
		if msg == "" {
			msg = string(c.Response().Body())
		}
		path := c.OriginalURL()
		if r := c.Route(); r != nil {
			path = r.Path
		}
		n := notificationapimodels.GeneralNotification{
			Title:    "Ошибка JML Lite",
			Message:  msg,
			Priority: models.ApprovalPriorityHigh,
			Facts: map[string]string{
				"Код":   fmt.Sprint(statusCode),
				"Метод": c.Method(),
				"Путь":  path,
			},
		}
		userCtx := context.WithoutCancel(c.UserContext())
		go sender.SendGeneralNotification(userCtx, n)
		return err
	}
}
