// Package metrics exposes Prometheus collectors for the API and the achievement job.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "runcrew",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runcrew",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "runcrew",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	recordsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "runcrew",
			Subsystem: "records",
			Name:      "created_total",
			Help:      "Run records logged by members.",
		},
	)

	goalsAchieved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "runcrew",
			Subsystem: "goals",
			Name:      "achieved_total",
			Help:      "Goals marked achieved by the evaluation job.",
		},
	)

	achievementRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runcrew",
			Subsystem: "goals",
			Name:      "evaluation_runs_total",
			Help:      "Achievement evaluation runs.",
		},
		[]string{"success"},
	)

	achievementDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "runcrew",
			Subsystem: "goals",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of achievement evaluation runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		recordsCreated,
		goalsAchieved,
		achievementRuns,
		achievementDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency labelled by the matched route template,
// so /run/goals/1 and /run/goals/2 share one series.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == "/metrics" {
				return next(c)
			}

			httpInFlight.Inc()
			defer httpInFlight.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := strings.ToUpper(c.Request().Method)
			httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// RecordCreated counts one newly logged run record.
func RecordCreated() {
	recordsCreated.Inc()
}

// RecordAchievementRun records one evaluation pass and how many goals it completed.
func RecordAchievementRun(duration time.Duration, achieved int, err error) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	result := "true"
	if err != nil {
		result = "false"
	}
	achievementRuns.WithLabelValues(result).Inc()
	achievementDuration.Observe(duration.Seconds())
	if achieved > 0 {
		goalsAchieved.Add(float64(achieved))
	}
}
