package http

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// requestValidator instancia única; los mensajes usan el nombre JSON del campo.
func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateBody valida el DTO y devuelve un mensaje legible con el primer campo inválido.
func validateBody(in any) (string, bool) {
	err := requestValidator().Struct(in)
	if err == nil {
		return "", true
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err.Error(), false
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; "), false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s es requerido", fe.Field())
	case "max":
		return fmt.Sprintf("%s excede %s caracteres", fe.Field(), fe.Param())
	case "uuid":
		return fmt.Sprintf("%s debe ser un UUID", fe.Field())
	default:
		return fmt.Sprintf("%s inválido (%s)", fe.Field(), fe.Tag())
	}
}
