// Copyright 2025 The adminbff Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package prometheus

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/storeforge/adminbff/internal/accesscontext"
)

type metricsHandler struct {
	reqCounter   *prometheus.CounterVec
	reqHistogram *prometheus.HistogramVec
	reqInFlight  *prometheus.GaugeVec
	filter       OperationFilter
}

// New instruments the handler with request counters, durations and in flight gauges. Requests
// are labeled by the route serving them instead of their paths to keep the cardinality bounded.
func New(options ...Option) func(http.Handler) http.Handler {
	conf := &opts{
		registerer:      prometheus.DefaultRegisterer,
		labels:          prometheus.Labels{},
		filterOperation: func(_ *http.Request) bool { return false },
	}

	for _, opt := range options {
		opt(conf)
	}

	counter := promauto.With(conf.registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name:        prometheus.BuildFQName(conf.namespace, conf.subsystem, "requests_total"),
			Help:        "Count all http requests by status code, method and route.",
			ConstLabels: conf.labels,
		},
		[]string{"status_code", "method", "route"},
	)

	histogram := promauto.With(conf.registerer).NewHistogramVec(prometheus.HistogramOpts{
		Name:        prometheus.BuildFQName(conf.namespace, conf.subsystem, "request_duration_seconds"),
		Help:        "Duration of all http requests by status code, method and route.",
		ConstLabels: conf.labels,
		Buckets: []float64{
			0.001, 0.0025, 0.005, 0.0075, // 1, 2.5, 5, 7.5ms
			0.01, 0.025, 0.05, 0.075, // 10, 25, 50, 75ms
			0.1, 0.25, 0.5, 0.75, // 100, 250, 500 750ms
			1.0, 2.0, 5.0, 10.0, 15.0, // 1, 2, 5, 10, 15s
		},
	},
		[]string{"status_code", "method", "route"},
	)

	gauge := promauto.With(conf.registerer).NewGaugeVec(prometheus.GaugeOpts{
		Name:        prometheus.BuildFQName(conf.namespace, conf.subsystem, "requests_in_progress_total"),
		Help:        "All the requests in progress",
		ConstLabels: conf.labels,
	}, []string{"method"})

	handler := &metricsHandler{
		reqCounter:   counter,
		reqHistogram: histogram,
		reqInFlight:  gauge,
		filter:       conf.filterOperation,
	}

	return handler.observe
}

func (h *metricsHandler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if h.filter(req) {
			next.ServeHTTP(rw, req)

			return
		}

		h.reqInFlight.WithLabelValues(req.Method).Inc()
		defer h.reqInFlight.WithLabelValues(req.Method).Dec()

		metrics := httpsnoop.CaptureMetrics(next, rw, req)

		route := accesscontext.Route(req.Context())
		if len(route) == 0 {
			route = "none"
		}

		statusCode := strconv.Itoa(metrics.Code)

		h.reqCounter.WithLabelValues(statusCode, req.Method, route).Inc()
		h.reqHistogram.WithLabelValues(statusCode, req.Method, route).Observe(metrics.Duration.Seconds())
	})
}
