// Package http expone el núcleo por HTTP en la interfaz local (loopback) para las vistas de escritorio.
package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// bodyLimit cubre libros de importación grandes.
const bodyLimit = 32 * 1024 * 1024

// NewApp arma la aplicación Fiber con el manejo de errores, el log de peticiones y las rutas.
func NewApp(name string, log zerolog.Logger, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name,
		ErrorHandler:          ErrorHandler(log),
		BodyLimit:             bodyLimit,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": name})
	})
	Router(app, deps)
	return app
}
