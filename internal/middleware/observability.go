package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/observability"
)

// Observability attaches Prometheus metrics and structured latency/error logging
// for the student, admin and seed APIs under /api/v2.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		if area := apiArea(c.Path()); area != "" {
			route := routeTemplate(c)
			method := c.Method()
			status := c.Response().StatusCode()
			statusLabel := strconv.Itoa(status)

			observability.APIRequests().WithLabelValues(method, route, statusLabel).Inc()
			observability.APILatency().WithLabelValues(method, route).Observe(duration.Seconds())
			if status >= fiber.StatusBadRequest {
				observability.APIErrors().WithLabelValues(method, route, statusLabel).Inc()
			}

			latencyMs := float64(duration) / float64(time.Millisecond)
			bucket := latencyBucket(duration)
			fields := logger.With().
				Str("correlation_id", GetCorrelationID(c)).
				Str("area", area).
				Str("route", route).
				Str("method", method).
				Int("status", status).
				Float64("latency_ms", latencyMs).
				Str("latency_bucket", bucket)
			if userID, ok := UserID(c); ok {
				fields = fields.Uint("user_id", userID).Str("user_role", UserRole(c))
			}
			requestLogger := fields.Logger()

			switch {
			case status >= fiber.StatusInternalServerError:
				requestLogger.Error().Msg("api request failed")
			case status >= fiber.StatusBadRequest:
				requestLogger.Warn().Msg("api request completed with client error")
			default:
				requestLogger.Info().Msg("api request completed")
			}
		}

		return err
	}
}

// apiArea returns the first segment after /api/v2, or "" for unversioned paths.
func apiArea(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/v2/")
	if !ok || rest == "" {
		return ""
	}
	area, _, _ := strings.Cut(rest, "/")
	return area
}

func routeTemplate(c *fiber.Ctx) string {
	if c.Route() != nil && c.Route().Path != "" {
		return c.Route().Path
	}
	return c.Path()
}

func latencyBucket(duration time.Duration) string {
	switch {
	case duration <= 25*time.Millisecond:
		return "<=25ms"
	case duration <= 50*time.Millisecond:
		return "<=50ms"
	case duration <= 100*time.Millisecond:
		return "<=100ms"
	case duration <= 250*time.Millisecond:
		return "<=250ms"
	case duration <= 500*time.Millisecond:
		return "<=500ms"
	default:
		return ">500ms"
	}
}
