package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderRequestID cabecera con el id de la petición.
const HeaderRequestID = "X-Request-ID"

// RequestLogger asigna un id a cada petición y registra método, ruta, estado y duración.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		start := time.Now()

		err := c.Next()
		if err != nil {
			// el ErrorHandler escribe la respuesta; así el estado registrado es el final
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		log.Debug().
			Str("request_id", id).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("petición")
		return nil
	}
}
