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

package otel

import (
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/propagators/autoprop"
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
)

var Module = fx.Invoke(initPropagation) //nolint:gochecknoglobals

// initPropagation makes the inbound and outbound http instrumentation extract and inject the
// trace context. The propagators are taken from the OTEL_PROPAGATORS environment variable and
// default to W3C tracecontext and baggage. Spans are only recorded if a tracer provider is
// registered by the embedding environment.
func initPropagation(logger zerolog.Logger) {
	otelLogger := logger.With().Str("_component", "otel").Logger()

	otel.SetLogger(zerologr.New(&otelLogger))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		otelLogger.Warn().Err(err).Msg("OpenTelemetry error")
	}))
	otel.SetTextMapPropagator(autoprop.NewTextMapPropagator())

	logger.Debug().Msg("Trace context propagation initialized")
}
