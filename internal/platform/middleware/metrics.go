package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pm/patientmgmt/internal/platform/metrics"
)

// Metrics records one observation per request, labelled by the matched route
// template. Unrouted requests share the "unmatched" label.
func Metrics(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = statusOf(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(c.Request().Method, route, status, time.Since(start).Seconds())
			return err
		}
	}
}
