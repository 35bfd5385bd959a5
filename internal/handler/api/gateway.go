package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"RoastGate/internal/analytics"
	"RoastGate/internal/domain/models"
	"RoastGate/internal/domain/repository"
	"RoastGate/internal/ticker"
	"RoastGate/internal/upstream"
	xhttp "RoastGate/pkg/http"
	"RoastGate/pkg/logger"
)

const maxEventBody = 64 << 10

// GatewayHandler exposes the public gateway surface: roast submission,
// analytics reads and event ingestion.
type GatewayHandler struct {
	logger    *logger.Logger
	forwarder *upstream.Forwarder
	snapshots repository.SnapshotSource
	ingestor  *analytics.Ingestor
}

// NewGatewayHandler creates the API handler.
func NewGatewayHandler(
	lgr *logger.Logger,
	forwarder *upstream.Forwarder,
	snapshots repository.SnapshotSource,
	ingestor *analytics.Ingestor,
) *GatewayHandler {
	return &GatewayHandler{
		logger:    lgr,
		forwarder: forwarder,
		snapshots: snapshots,
		ingestor:  ingestor,
	}
}

// RegisterRoutes implements xhttp.Handler.
func (h *GatewayHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/roast", h.SubmitRoast)
	g.GET("/analytics", h.GetAnalytics)
	g.POST("/analytics/events", h.RecordEvent)

	e.GET("/health", h.Health)
}

// SubmitRoast validates the ticker batch and forwards it upstream.
func (h *GatewayHandler) SubmitRoast(c echo.Context) error {
	var req models.RoastRequest
	if errs := xhttp.ReadAndValidateRequest(c, &req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	tickers, err := ticker.Normalize(req.Tickers)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}

	caller := upstream.Caller{
		UserID:    upstream.UserID(c.Request()),
		UserAgent: c.Request().UserAgent(),
	}

	result, err := h.forwarder.Roast(c.Request().Context(), tickers, caller)
	if err != nil {
		var rle *upstream.RateLimitedError
		if errors.As(err, &rle) {
			return writeRateLimited(c, rle.Signal)
		}
		h.logger.Error("roast forwarding failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	return c.JSON(http.StatusOK, result)
}

// GetAnalytics serves the aggregate analytics snapshot.
func (h *GatewayHandler) GetAnalytics(c echo.Context) error {
	snap := h.snapshots.Fetch(c.Request().Context())
	return c.JSON(http.StatusOK, snap)
}

// RecordEvent ingests a client-reported usage event.
func (h *GatewayHandler) RecordEvent(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxEventBody))
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("could not read request body"))
	}

	err = h.ingestor.Ingest(c.Request().Context(), c.Request().Header.Get("Authorization"), body)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, analytics.ErrUnauthorized):
		return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("invalid analytics credentials"))
	case errors.Is(err, analytics.ErrBadEvent):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	default:
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not record event").WithError(err))
	}
}

// Health reports process liveness.
func (h *GatewayHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeRateLimited translates an upstream throttle signal into the
// caller-facing 429 contract: standard headers plus a JSON body.
func writeRateLimited(c echo.Context, sig *models.RateLimitSignal) error {
	reset := time.Now().Add(time.Duration(sig.RetryAfterSeconds) * time.Second).Unix()

	header := c.Response().Header()
	header.Set("Retry-After", fmt.Sprintf("%d", sig.RetryAfterSeconds))
	header.Set("X-RateLimit-Limit", fmt.Sprintf("%d", sig.Limit))
	header.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", sig.Remaining))
	header.Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset))

	message := sig.Message
	if message == "" {
		message = "The analysis service is cooling down. Try again shortly."
	}

	return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
		"error":      "Rate limit exceeded",
		"retryAfter": sig.RetryAfterSeconds,
		"message":    message,
	})
}
