package authutils

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// User пользователь, от имени которого выполняется действие
type User struct {
	ID    uint
	Name  string
	Email string
}

type userCtxKey struct{}

func ContextWithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

func UserFromContext(ctx context.Context) (User, bool) {
	if ctx == nil {
		return User{}, false
	}
	user, ok := ctx.Value(userCtxKey{}).(User)
	return user, ok
}

func GetToken(user User, secret string, ttl time.Duration) (tokenString string, err error) {
	claims := jwt.MapClaims{
		"name":  user.Name,
		"email": user.Email,
		"sub":   fmt.Sprint(user.ID),
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func GetClaims(ctx *fiber.Ctx) jwt.MapClaims {
	token, ok := ctx.Locals("user").(*jwt.Token)
	if !ok {
		return jwt.MapClaims{}
	}
	return token.Claims.(jwt.MapClaims)
}

func UserFromClaims(claims jwt.MapClaims) User {
	user := User{}
	if sub, ok := claims["sub"].(string); ok {
		id, err := strconv.ParseUint(sub, 10, 64)
		if err == nil {
			user.ID = uint(id)
		}
	}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	return user
}
