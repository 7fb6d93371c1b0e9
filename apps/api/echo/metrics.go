package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	entityKey = "entity"
	actionKey = "action"
)

type metrics struct {
	envelopes *prometheus.CounterVec
	requests  *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		envelopes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_envelope_total",
			Help: "Envelopes answered, by entity, action and outcome.",
		}, []string{"entity", "action", "outcome"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lms_http_request_duration_seconds",
			Help:    "Duration of HTTP requests, by method, route and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
	reg.MustRegister(m.envelopes, m.requests)
	return m
}

func (m *metrics) observe(ctx echo.Context, success bool) {
	entity, _ := ctx.Get(entityKey).(string)
	action, _ := ctx.Get(actionKey).(string)
	if entity == "" {
		entity = "-"
	}
	if action == "" {
		action = ctx.Request().Method
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.envelopes.WithLabelValues(entity, action, outcome).Inc()
}

func (m *metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)
		if err != nil {
			ctx.Error(err)
		}
		route := ctx.Path()
		if route == "" {
			route = "unmatched"
		}
		m.requests.
			WithLabelValues(ctx.Request().Method, route, strconv.Itoa(ctx.Response().Status)).
			Observe(time.Since(start).Seconds())
		return nil
	}
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}
