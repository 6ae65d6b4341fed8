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

package api

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/storeforge/adminbff/internal/bff"
	"github.com/storeforge/adminbff/internal/cachepolicy"
	"github.com/storeforge/adminbff/internal/config"
	"github.com/storeforge/adminbff/internal/handler/middleware/http/errorhandler"
	"github.com/storeforge/adminbff/internal/x/errorchain"
)

const (
	EndpointPrefix    = "/api/"
	EndpointCSRFToken = "/api/csrf-token"
)

type route struct {
	target Target
	opts   []Option
}

// Router dispatches /api/<name>/<path> requests to the downstream service configured for <name>.
// <path> is appended to the prefix of that route.
type Router struct {
	proxy  *Proxy
	eh     errorhandler.ErrorHandler
	routes map[string]route
}

func NewRouter(routes map[string]config.RouteConfig, proxy *Proxy, eh errorhandler.ErrorHandler, logger zerolog.Logger) *Router {
	table := make(map[string]route, len(routes))

	for name, conf := range routes {
		var opts []Option

		if policy, ok := cachepolicy.ByName(conf.CachePolicy); ok {
			opts = append(opts, WithCachePolicy(policy))
		}

		if conf.Timeout > 0 {
			opts = append(opts, WithTimeout(conf.Timeout))
		}

		table[name] = route{
			target: Target{Name: name, BaseURL: conf.URL, Path: conf.Prefix},
			opts:   opts,
		}

		logger.Debug().
			Str("_route", name).
			Str("_url", conf.URL).
			Str("_prefix", conf.Prefix).
			Msg("Route registered")
	}

	return &Router{proxy: proxy, eh: eh, routes: table}
}

func (r *Router) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	name, rest, _ := strings.Cut(strings.TrimPrefix(req.URL.Path, EndpointPrefix), "/")

	rt, ok := r.routes[name]
	if !ok || !strings.HasPrefix(req.URL.Path, EndpointPrefix) {
		r.eh.HandleError(rw, req, errorchain.NewWithMessagef(bff.ErrNoRouteFound,
			"no route configured for %s", req.URL.Path))

		return
	}

	target := rt.target
	if len(rest) != 0 {
		target.Path = strings.TrimRight(target.Path, "/") + "/" + rest
	}

	switch req.Method {
	case http.MethodGet:
		r.proxy.Get(rw, req, target, rt.opts...)
	case http.MethodPost:
		r.proxy.Post(rw, req, target, rt.opts...)
	case http.MethodPut:
		r.proxy.Put(rw, req, target, rt.opts...)
	case http.MethodPatch:
		r.proxy.Patch(rw, req, target, rt.opts...)
	case http.MethodDelete:
		r.proxy.Delete(rw, req, target, rt.opts...)
	default:
		rw.Header().Set("Allow", "GET, POST, PUT, PATCH, DELETE")
		r.eh.HandleError(rw, req, errorchain.NewWithMessagef(bff.ErrMethodNotAllowed,
			"%s is not supported", req.Method))
	}
}
