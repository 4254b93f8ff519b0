package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/moderationhq/modgate/pkg/infra/prometheus"
)

type metricsMiddleware struct {
	logger *logrus.Logger
}

// NewMetricsMiddleware records per-request counters and latency. Routes
// are labelled by their registered pattern, not the raw path, so the
// cardinality stays bounded.
func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{logger: logger}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = c.Path()
		}

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		prometheus.HTTPRequestsTotal.
			WithLabelValues(c.Method(), route, strconv.Itoa(status)).
			Inc()
		prometheus.HTTPRequestLatency.
			WithLabelValues(route).
			Observe(float64(time.Since(start).Milliseconds()))

		return err
	}
}
