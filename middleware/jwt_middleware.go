package middleware

import (
	"jml-lite/config"
	"jml-lite/fiberlog"
	authutils "jml-lite/lib/utils/auth-utils"
	apimodels "jml-lite/models/api"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func AuthorizationRequired() fiber.Handler {
	return jwtware.New(jwtware.Config{
		Claims: jwt.MapClaims{},
		// браузер не передаёт заголовки при открытии websocket
		TokenLookup: "header:Authorization,query:access_token",
		SigningKey: jwtware.SigningKey{
			JWTAlg: "HS256",
			Key:    []byte(config.Conf.Auth.JWTSecret),
		},
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("требуется авторизация"))
		},
	})
}

// ActingUser кладёт пользователя из токена в контекст запроса, оттуда его берут сервисы и журнал
func ActingUser() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := authutils.UserFromClaims(authutils.GetClaims(ctx))
		if user.ID == 0 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("в токене не указан пользователь"))
		}
		ctx.SetUserContext(authutils.ContextWithUser(ctx.UserContext(), user))
		ctx.Locals(fiberlog.TagUserID, user.ID)
		return ctx.Next()
	}
}

func GetUser(ctx *fiber.Ctx) authutils.User {
	user, _ := authutils.UserFromContext(ctx.UserContext())
	return user
}
