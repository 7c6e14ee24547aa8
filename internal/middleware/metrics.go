package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"smartfactory/prometheus"
)

// MetricsMiddleware records request counts and latencies per route. It uses
// c.Path() rather than the raw URL so lot ids do not explode the label
// cardinality.
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		method := c.Request().Method
		path := c.Path()
		status := strconv.Itoa(c.Response().Status)

		prometheus.HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
		prometheus.HttpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())

		return err
	}
}
