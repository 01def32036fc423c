package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var predictionsServed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "retail_predictions_served_total",
	Help: "Demand predictions served over the HTTP API.",
})
