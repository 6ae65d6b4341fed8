// Copyright 2025 Dimitrij Drus <dadrus@gmx.de>
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

package management

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ccoveille/go-safecast"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/storeforge/adminbff/internal/config"
	"github.com/storeforge/adminbff/internal/handler/middleware/http/accesslog"
	"github.com/storeforge/adminbff/internal/handler/middleware/http/dump"
	"github.com/storeforge/adminbff/internal/handler/middleware/http/errorhandler"
	"github.com/storeforge/adminbff/internal/handler/middleware/http/logger"
	"github.com/storeforge/adminbff/internal/handler/middleware/http/passthrough"
	prometheus2 "github.com/storeforge/adminbff/internal/handler/middleware/http/prometheus"
	"github.com/storeforge/adminbff/internal/handler/middleware/http/recovery"
	"github.com/storeforge/adminbff/internal/x"
	"github.com/storeforge/adminbff/internal/x/httpx"
	"github.com/storeforge/adminbff/internal/x/loggeradapter"
)

func newService(
	conf *config.Configuration,
	reg prometheus.Registerer,
	gatherer prometheus.Gatherer,
	log zerolog.Logger,
) *http.Server {
	cfg := conf.Management
	eh := errorhandler.New()
	opFilter := func(req *http.Request) bool {
		return req.URL.Path == EndpointHealth || req.URL.Path == EndpointMetrics
	}

	hc := alice.New(
		accesslog.New(log),
		logger.New(log),
		dump.New(),
		recovery.New(eh),
		otelhttp.NewMiddleware("",
			otelhttp.WithServerName("management"),
			otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
				return fmt.Sprintf("EntryPoint %s %s%s",
					strings.ToLower(x.IfThenElse(req.TLS != nil, "https", "http")),
					httpx.LocalAddress(req), req.URL.Path)
			}),
			otelhttp.WithFilter(func(req *http.Request) bool { return !opFilter(req) }),
		),
		x.IfThenElseExec(conf.Metrics.Enabled,
			func() func(http.Handler) http.Handler {
				return prometheus2.New(
					prometheus2.WithServiceName("management"),
					prometheus2.WithRegisterer(reg),
					prometheus2.WithOperationFilter(opFilter),
				)
			},
			func() func(http.Handler) http.Handler { return passthrough.New },
		),
		x.IfThenElseExec(cfg.CORS != nil,
			func() func(http.Handler) http.Handler {
				return cors.New(
					cors.Options{
						AllowedOrigins:   cfg.CORS.AllowedOrigins,
						AllowedMethods:   cfg.CORS.AllowedMethods,
						AllowedHeaders:   cfg.CORS.AllowedHeaders,
						AllowCredentials: cfg.CORS.AllowCredentials,
						ExposedHeaders:   cfg.CORS.ExposedHeaders,
						MaxAge:           int(cfg.CORS.MaxAge.Seconds()),
					},
				).Handler
			},
			func() func(http.Handler) http.Handler { return passthrough.New },
		),
	).Then(newManagementHandler(
		x.IfThenElse(conf.Metrics.Enabled, gatherer, nil),
		eh,
	))

	return &http.Server{
		Handler:        hc,
		ReadTimeout:    cfg.Timeout.Read,
		WriteTimeout:   cfg.Timeout.Write,
		IdleTimeout:    cfg.Timeout.Idle,
		MaxHeaderBytes: safecast.MustConvert[int](uint64(cfg.BufferLimit.Read)),
		ErrorLog:       loggeradapter.NewStdLogger(log),
	}
}
