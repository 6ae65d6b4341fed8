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
	"net/http"

	"github.com/go-http-utils/etag"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storeforge/adminbff/internal/handler/middleware/http/errorhandler"
	"github.com/storeforge/adminbff/internal/handler/middleware/http/methodfilter"
)

const (
	EndpointHealth  = "/.well-known/health"
	EndpointMetrics = "/metrics"
)

func newManagementHandler(gatherer prometheus.Gatherer, eh errorhandler.ErrorHandler) http.Handler {
	mux := http.NewServeMux()
	get := alice.New(methodfilter.New(eh, http.MethodGet))

	mux.Handle(EndpointHealth, get.Then(etag.Handler(health(), false)))

	if gatherer != nil {
		mux.Handle(EndpointMetrics, get.Then(
			promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true}),
		))
	}

	return mux
}
