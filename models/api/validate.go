package apimodels

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct проверяет теги validate и собирает ошибки в одно сообщение для UI
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	msgs := make([]string, 0, len(vErrs))
	for _, fe := range vErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ValidateVar проверка одиночного значения, например адреса вебхука
func ValidateVar(value any, tag string) error {
	return validate.Var(value, tag)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("не заполнено поле %s", fe.Field())
	case "oneof":
		return fmt.Sprintf("недопустимое значение поля %s, ожидается одно из: %s", fe.Field(), fe.Param())
	case "url", "https_url":
		return fmt.Sprintf("поле %s должно содержать корректный адрес https", fe.Field())
	case "email":
		return fmt.Sprintf("поле %s должно содержать корректный email", fe.Field())
	case "gt", "gte", "min":
		return fmt.Sprintf("поле %s должно быть не меньше %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("некорректное значение поля %s", fe.Field())
}
