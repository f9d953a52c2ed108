package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energytracker_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "energytracker_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	consumptionRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energytracker_consumption_records_total",
		Help: "Consumption records written, by how the kWh value was obtained",
	}, []string{"source"})

	tariffActivations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energytracker_tariff_activations_total",
		Help: "Tariff activation attempts by result",
	}, []string{"result"})

	invariantConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energytracker_conflicts_total",
		Help: "Requests rejected with 409 by conflict code",
	}, []string{"code"})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveConsumptionRecorded counts a written consumption record. source is "kwh" or "hours".
func ObserveConsumptionRecorded(source string) {
	consumptionRecorded.WithLabelValues(source).Inc()
}

// ObserveTariffActivation counts an activation with result "activated", "noop" or "rejected".
func ObserveTariffActivation(result string) {
	tariffActivations.WithLabelValues(result).Inc()
}

// ObserveConflict counts a request rejected by an invariant check.
func ObserveConflict(code string) {
	invariantConflicts.WithLabelValues(code).Inc()
}

// Middleware instruments echo requests. The route template is used as the
// label so path parameters do not explode cardinality.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				var coder interface{ StatusCode() int }
				switch {
				case errors.As(err, &he):
					status = he.Code
				case errors.As(err, &coder):
					status = coder.StatusCode()
				default:
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			ObserveHTTPRequest(c.Request().Method, route, strconv.Itoa(status), time.Since(start))
			return err
		}
	}
}
