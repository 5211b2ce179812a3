package http

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

// newValidator reporta los campos con su nombre JSON (o de query) en lugar del nombre Go.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// bindJSON parsea el cuerpo en dst y lo valida.
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cuerpo inválido")
	}
	return validate.Struct(dst)
}

// bindQuery parsea la query string en dst y la valida.
func bindQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "parámetros inválidos")
	}
	return validate.Struct(dst)
}

// paramID lee un id entero positivo de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" inválido")
	}
	return id, nil
}

// queryDay lee ?day=YYYY-MM-DD; sin valor es hoy.
func queryDay(c *fiber.Ctx) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("day"))
	if raw == "" {
		return time.Now(), nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "day debe tener formato YYYY-MM-DD")
	}
	return day, nil
}
