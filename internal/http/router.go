package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"logbook/backend/internal/handler"
)

func NewRouter(
	entryHandler *handler.EntryHandler,
	transferHandler *handler.TransferHandler,
	askHandler *handler.AskHandler,
	settingsHandler *handler.SettingsHandler,
	staticDir string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(RequestLoggerMiddleware())

	api := e.Group("/api")
	entryHandler.RegisterRoutes(api)
	transferHandler.RegisterRoutes(api)
	askHandler.RegisterRoutes(api)
	settingsHandler.RegisterRoutes(api)

	registerStatic(e, staticDir)

	return e
}
