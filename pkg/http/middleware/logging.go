package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one line per request: method, path, caller,
// status and latency. Kept on the stdlib logger so it works before the
// application logger is wired.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			log.Printf("%s %s from %s -> %d (%s)",
				req.Method,
				req.URL.Path,
				c.RealIP(),
				c.Response().Status,
				time.Since(start),
			)

			return err
		}
	}
}
