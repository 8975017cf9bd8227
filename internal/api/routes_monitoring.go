package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charlesng35/coffeeshop/internal/app"
)

const defaultMetricsEndpoint = "/metrics"

func registerMetricsRoutes(r gin.IRouter, cfg *app.Config) {
	if !cfg.Monitoring.Prometheus.Enabled {
		return
	}

	endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
	if endpoint == "" {
		endpoint = defaultMetricsEndpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	r.GET(endpoint, gin.WrapH(promhttp.Handler()))
}
