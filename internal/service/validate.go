// Пакет service — вызовы REST backend по ролям: auth, user, worker, admin.
// Один метод на endpoint: входная структура → выходная структура.
// Проверка входных данных выполняется до сетевого вызова.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError — некорректные входные данные, обнаруженные до запроса
// к backend. На сервер такие данные не отправляются.
type ValidationError struct {
	// Field — поле с ошибкой (пусто для ошибок всего запроса).
	Field string
	// Message — человекочитаемое описание.
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation проверяет, что err — ошибка валидации.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// validate — общий экземпляр go-playground/validator (потокобезопасен).
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct проверяет структуру по тегам validate и возвращает
// *ValidationError с объединённым сообщением.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return &ValidationError{
		Field:   ve[0].Field(),
		Message: strings.Join(msgs, "; "),
	}
}

// requireText проверяет, что строковое поле не пустое и не из одних пробелов.
func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: fmt.Sprintf("поле %s обязательно", field)}
	}
	return nil
}

// requireID проверяет положительный идентификатор.
func requireID(field string, id int64) error {
	if id <= 0 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("некорректный %s: %d", field, id)}
	}
	return nil
}

// fieldError переводит ошибку одного поля в сообщение.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("поле %s обязательно", field)
	case "gt":
		return fmt.Sprintf("поле %s должно быть больше %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("поле %s не может быть меньше %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("поле %s: минимум %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("поле %s: максимум %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("поле %s должно иметь длину %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("поле %s должно быть одним из: %s", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("поле %s должно совпадать с %s", field, fe.Param())
	default:
		return fmt.Sprintf("поле %s не прошло проверку (%s)", field, fe.Tag())
	}
}
