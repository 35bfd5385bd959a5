package http

import "github.com/labstack/echo/v4"

// Handler is what the server needs from the gateway's API layer: a
// single hook to attach its routes to the Echo instance.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
